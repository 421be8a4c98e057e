package news

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rickgao/cryptoverse/internal/model"
)

// Keyword lists are matched as substrings of the lower-cased headline.
// Alert keywords take precedence over market keywords.
var (
	alertKeywords  = []string{"crash", "drop", "fall", "hack", "exploit", "warning", "sec", "regulation"}
	marketKeywords = []string{"surge", "rise", "bull", "rally", "gain", "market", "price"}
)

// Classify derives the category of a headline. It is a pure function of text.
func Classify(text string) model.Category {
	// Casers carry state and must not be shared between goroutines.
	lower := cases.Lower(language.Und).String(text)

	if containsAny(lower, alertKeywords) {
		return model.CategoryAlert
	}
	if containsAny(lower, marketKeywords) {
		return model.CategoryMarket
	}
	return model.CategoryUpdate
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

package display

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown for absent per-coin figures.
const NotAvailable = "N/A"

var (
	one      = decimal.NewFromInt(1)
	thousand = decimal.NewFromInt(1000)
	printer  = message.NewPrinter(language.English)
)

// compactUnits is ordered smallest first.
var compactUnits = []struct {
	exp    int32
	suffix string
}{
	{0, ""},
	{3, "K"},
	{6, "M"},
	{9, "B"},
	{12, "T"},
}

// Price formats a coin price with grouping. Sub-dollar prices keep between
// four and six decimals, everything else two.
func Price(d decimal.Decimal) string {
	if d.IsNegative() {
		d = decimal.Zero
	}

	if fine := d.Round(6); fine.LessThan(one) {
		s := fine.StringFixed(6)
		for strings.HasSuffix(s, "0") && len(s)-strings.IndexByte(s, '.') > 5 {
			s = s[:len(s)-1]
		}
		return "$" + s
	}

	r := d.Round(2)
	fixed := r.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	return "$" + printer.Sprintf("%d", r.IntPart()) + "." + frac
}

// Compact formats a large amount as $1.23T, $456.7B, $12M and so on.
// An absent amount is "$0".
func Compact(n decimal.NullDecimal) string {
	if !n.Valid || !n.Decimal.IsPositive() {
		return "$0"
	}
	d := n.Decimal

	i := 0
	for j := len(compactUnits) - 1; j > 0; j-- {
		if d.GreaterThanOrEqual(decimal.New(1, compactUnits[j].exp)) {
			i = j
			break
		}
	}

	v := d.Shift(-compactUnits[i].exp).Round(2)
	// 999.999B rounds to 1000B; show it as 1T.
	if v.GreaterThanOrEqual(thousand) && i < len(compactUnits)-1 {
		i++
		v = d.Shift(-compactUnits[i].exp).Round(2)
	}
	return "$" + v.String() + compactUnits[i].suffix
}

// MarketCap is Compact for a single coin, where absent reads "N/A".
func MarketCap(n decimal.NullDecimal) string {
	if !n.Valid || !n.Decimal.IsPositive() {
		return NotAvailable
	}
	return Compact(n)
}

// Percent formats a signed change with two decimals.
func Percent(p *float64) string {
	if p == nil {
		return NotAvailable
	}
	sign := ""
	if *p > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, *p)
}

// Share formats a dominance percentage with one decimal.
func Share(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Rank formats a market-cap rank.
func Rank(r *int) string {
	if r == nil {
		return NotAvailable
	}
	return fmt.Sprintf("#%d", *r)
}

// Count formats an optional count with grouping.
func Count(n *int) string {
	if n == nil {
		return "0"
	}
	return printer.Sprintf("%d", *n)
}

// Trend classifies a change for coloring.
func Trend(p *float64) string {
	switch {
	case p == nil || *p == 0:
		return "flat"
	case *p > 0:
		return "up"
	default:
		return "down"
	}
}

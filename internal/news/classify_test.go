package news

import (
	"testing"

	"github.com/rickgao/cryptoverse/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want model.Category
	}{
		{"Bitcoin crash wipes out leveraged longs", model.CategoryAlert},
		{"ETH DROPS below support", model.CategoryAlert},
		{"Exchange hack drains hot wallet", model.CategoryAlert},
		{"Regulators issue warning on stablecoins", model.CategoryAlert},
		{"SEC delays ETF decision", model.CategoryAlert},
		{"Regulation bill advances", model.CategoryAlert},
		{"Protocol exploit under investigation", model.CategoryAlert},
		{"Solana rally continues", model.CategoryMarket},
		{"Bull run ahead?", model.CategoryMarket},
		{"Bitcoin price hits new high", model.CategoryMarket},
		{"Altcoins gain as volume surges", model.CategoryMarket},
		{"New wallet launched for developers", model.CategoryUpdate},
		{"", model.CategoryUpdate},
		// Alert keywords win over market keywords.
		{"SEC warning sends market surging", model.CategoryAlert},
		{"Price falls after rally fades", model.CategoryAlert},
		// Substring matching is intentional.
		{"Hardware wallet security review", model.CategoryAlert},
		{"Sunrise for layer 2", model.CategoryMarket},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	headlines := []string{
		"SEC warning sends market surging",
		"Top altcoins show strong performance amid market recovery",
		"New DeFi protocol aims to revolutionize staking rewards",
	}
	for _, h := range headlines {
		first := Classify(h)
		for i := 0; i < 5; i++ {
			if got := Classify(h); got != first {
				t.Errorf("Classify(%q) changed from %q to %q", h, first, got)
			}
		}
	}
}

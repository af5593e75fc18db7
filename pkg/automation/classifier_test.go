package automation

import (
	"testing"

	"github.com/tallyhq/tally/pkg/api"
)

func TestClassify_KeywordRules(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		description string
		want        string
	}{
		{"Morning coffee", "Food"},
		{"Uber to airport", "Transport"},
		{"Amazon order", "Shopping"},
		{"Netflix subscription", "Entertainment"},
		{"Internet bill", "Bills"},
		{"Pharmacy run", "Health"},
		{"Course materials", "Education"},
		{"Mystery purchase", "Other"},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.description, nil); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

// Table order is the tie-break: "gas station shop" hits both Transport
// ("gas") and Shopping ("shop"), and Transport comes first.
func TestClassify_TableOrderWins(t *testing.T) {
	c := NewClassifier(nil)
	if got := c.Classify("gas station shop", nil); got != "Transport" {
		t.Errorf("Classify(gas station shop) = %q, want Transport", got)
	}
}

func TestClassify_HistoryFallback(t *testing.T) {
	c := NewClassifier(nil)
	history := []api.Transaction{
		{Description: "Vet visit for Rex", Category: "Pets"},
		{Description: "Vet", Category: "Health"},
	}

	// Input is a substring of the first history entry; first match wins.
	if got := c.Classify("vet visit", history); got != "Pets" {
		t.Errorf("Classify(vet visit) = %q, want Pets", got)
	}

	// History entry is a substring of the input.
	if got := c.Classify("emergency vet visit for rex downtown", history); got != "Pets" {
		t.Errorf("Classify(long description) = %q, want Pets", got)
	}
}

func TestClassify_EmptyHistoryFallsBackToOther(t *testing.T) {
	c := NewClassifier(nil)
	if got := c.Classify("zzzz", nil); got != CategoryOther {
		t.Errorf("Classify(zzzz) = %q, want %q", got, CategoryOther)
	}
}

func TestClassify_CustomTable(t *testing.T) {
	c := NewClassifier([]CategoryRule{
		{"Pets", []string{"vet", "kibble"}},
	})
	if got := c.Classify("Kibble refill", nil); got != "Pets" {
		t.Errorf("Classify(Kibble refill) = %q, want Pets", got)
	}
	// Default table is replaced, not extended.
	if got := c.Classify("coffee", nil); got != CategoryOther {
		t.Errorf("Classify(coffee) = %q, want %q", got, CategoryOther)
	}
}

// Package automation infers structure from raw records and time: it
// categorizes free-text descriptions, detects recurring transactions,
// watches the monthly budget, and schedules task reminders.
package automation

import (
	"strings"

	"github.com/tallyhq/tally/pkg/api"
)

// CategoryOther is the fallback when no rule or historical match applies.
const CategoryOther = "Other"

// CategoryRule maps a category to the keyword substrings that select it.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultRules returns the built-in keyword table. Order is significant:
// the first rule with any keyword hit wins.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{"Food", []string{"coffee", "lunch", "dinner", "breakfast", "restaurant", "cafe", "pizza", "burger", "food", "meal"}},
		{"Transport", []string{"uber", "lyft", "gas", "fuel", "parking", "taxi", "bus", "train", "metro"}},
		{"Shopping", []string{"amazon", "walmart", "target", "mall", "store", "shop"}},
		{"Entertainment", []string{"netflix", "spotify", "movie", "cinema", "game", "concert"}},
		{"Bills", []string{"electric", "water", "internet", "phone", "rent", "bill", "utility"}},
		{"Health", []string{"pharmacy", "doctor", "hospital", "medicine", "gym", "fitness"}},
		{"Education", []string{"book", "course", "tuition", "school", "university"}},
	}
}

// Classifier assigns categories to transaction descriptions using an ordered
// keyword table, falling back to historical similarity. It has no side
// effects and is deterministic given the same table and history.
type Classifier struct {
	rules []CategoryRule
}

// NewClassifier creates a classifier with the given keyword table. A nil
// table means DefaultRules.
func NewClassifier(rules []CategoryRule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the category for a description. Keyword rules are tested
// in table order and the first substring hit wins; otherwise the first
// historical transaction whose description contains or is contained by the
// input (case-insensitive) lends its category; otherwise CategoryOther.
func (c *Classifier) Classify(description string, history []api.Transaction) string {
	lower := strings.ToLower(description)

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}

	for _, t := range history {
		prev := strings.ToLower(t.Description)
		if strings.Contains(prev, lower) || strings.Contains(lower, prev) {
			return t.Category
		}
	}

	return CategoryOther
}

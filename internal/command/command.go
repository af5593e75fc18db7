// Package command parses free-text commands, as produced by voice
// transcription or typed at the CLI, into structured actions. Rules are
// tried in a fixed order; the first match wins.
package command

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

// Kind identifies the action a parsed command requests.
type Kind string

const (
	AddExpense  Kind = "add-expense"
	AddIncome   Kind = "add-income"
	AddShopping Kind = "add-shopping"
	AddTask     Kind = "add-task"
	ShowBudget  Kind = "show-budget"
)

// ErrUnrecognized means no rule in the grammar matched the input.
var ErrUnrecognized = errors.New("command not recognized")

// Command is a parsed instruction. Amount is only meaningful for
// AddExpense and AddIncome.
type Command struct {
	Kind        Kind
	Description string
	Amount      decimal.Decimal
}

// rule pairs a pattern with an extractor that builds the Command from the
// submatches. Extractors may reject a match with an error.
type rule struct {
	kind    Kind
	pattern *regexp.Regexp
	extract func(matches []string) (Command, error)
}

// The grammar. Order matters: the expense rule must run before the
// shopping rule so "add coffee 5" is an expense while "add milk" is a
// shopping item. Amounts are captured loosely and validated by the
// extractor so "add coffee 5.5.5" is rejected rather than half-matched.
var grammar = []rule{
	{
		kind:    AddExpense,
		pattern: regexp.MustCompile(`^(?:add|expense|spent|spend)\s+(.+?)\s+([0-9][0-9.,]*)\s*(?:dollars?|bucks?|rupees?)?$`),
		extract: amountCommand(AddExpense),
	},
	{
		kind:    AddIncome,
		pattern: regexp.MustCompile(`^income\s+(.+?)\s+([0-9][0-9.,]*)$`),
		extract: amountCommand(AddIncome),
	},
	{
		kind:    AddShopping,
		pattern: regexp.MustCompile(`^(?:add|shopping)\s+(.+?)(?:\s+to\s+(?:the\s+)?(?:shopping(?:\s+list)?|list))?$`),
		extract: textCommand(AddShopping),
	},
	{
		kind:    AddTask,
		pattern: regexp.MustCompile(`^(?:task|todo|remind\s+me\s+to)\s+(.+)$`),
		extract: textCommand(AddTask),
	},
	{
		kind:    ShowBudget,
		pattern: regexp.MustCompile(`\b(?:budget|spending)\b`),
		extract: func([]string) (Command, error) {
			return Command{Kind: ShowBudget}, nil
		},
	},
}

// Parse matches text against the grammar. It returns ErrUnrecognized when
// nothing matches and api.ErrMalformedInput when a rule matches but its
// amount cannot be parsed.
func Parse(text string) (Command, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Command{}, fmt.Errorf("empty command: %w", api.ErrMalformedInput)
	}
	for _, r := range grammar {
		matches := r.pattern.FindStringSubmatch(text)
		if matches == nil {
			continue
		}
		return r.extract(matches)
	}
	return Command{}, fmt.Errorf("%q: %w", text, ErrUnrecognized)
}

func amountCommand(kind Kind) func([]string) (Command, error) {
	return func(matches []string) (Command, error) {
		amount, err := decimal.NewFromString(matches[2])
		if err != nil {
			return Command{}, fmt.Errorf("amount %q: %w", matches[2], api.ErrMalformedInput)
		}
		return Command{
			Kind:        kind,
			Description: capitalize(matches[1]),
			Amount:      amount,
		}, nil
	}
}

func textCommand(kind Kind) func([]string) (Command, error) {
	return func(matches []string) (Command, error) {
		return Command{Kind: kind, Description: capitalize(matches[1])}, nil
	}
}

func capitalize(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

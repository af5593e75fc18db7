package automation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

// AlertKind names a budget threshold crossing.
type AlertKind string

const (
	AlertNinetyPercent AlertKind = "ninety-percent"
	AlertExceeded      AlertKind = "exceeded"
)

// budgetSubject is the ledger subject shared by all budget flags.
const budgetSubject = "budget"

// BudgetAlert reports a threshold crossing for the month containing the
// evaluation day.
type BudgetAlert struct {
	Kind    AlertKind
	Spent   decimal.Decimal
	Budget  decimal.Decimal
	Percent decimal.Decimal
}

var (
	ninety  = decimal.NewFromInt(90)
	hundred = decimal.NewFromInt(100)
)

// MonthSpend sums expense amounts for the calendar month containing now.
func MonthSpend(transactions []api.Transaction, now api.Date) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type == api.TypeExpense && t.Date.SameMonth(now) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// EvaluateBudget compares month-to-date spend against the configured
// ceiling and returns the alerts crossing a threshold for the first time in
// the current epoch. The two thresholds are suppressed independently, and a
// raised flag is never retracted within its epoch even if spend later drops
// below the threshold. Suppression keys embed the month, so a long-running
// process re-arms at month rollover.
func EvaluateBudget(transactions []api.Transaction, settings api.Settings, now api.Date, ledger api.Ledger) []BudgetAlert {
	if !settings.Budget.IsPositive() {
		return nil
	}

	spent := MonthSpend(transactions, now)
	percent := spent.Div(settings.Budget).Mul(hundred)

	var alerts []BudgetAlert
	emit := func(kind AlertKind, threshold decimal.Decimal) {
		if percent.LessThan(threshold) {
			return
		}
		condition := string(kind) + ":" + now.MonthKey()
		if ledger.Marked(budgetSubject, condition) {
			return
		}
		ledger.Mark(budgetSubject, condition)
		alerts = append(alerts, BudgetAlert{
			Kind:    kind,
			Spent:   spent,
			Budget:  settings.Budget,
			Percent: percent,
		})
	}

	emit(AlertNinetyPercent, ninety)
	emit(AlertExceeded, hundred)
	return alerts
}

// SuggestBudget proposes a monthly budget from the last three months of
// expenses: the monthly average plus a 10% buffer. It returns nil when
// fewer than ten expenses exist in the window, since the average would be
// noise.
func SuggestBudget(transactions []api.Transaction, now api.Date) *decimal.Decimal {
	cutoff := api.NewDate(now.Year(), now.Month()-3, 1)

	var recent []api.Transaction
	for _, t := range transactions {
		if t.Type == api.TypeExpense && !t.Date.Before(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) < 10 {
		return nil
	}

	total := decimal.Zero
	for _, t := range recent {
		total = total.Add(t.Amount)
	}

	months := (now.DaysSince(cutoff) + 29) / 30
	if months < 1 {
		months = 1
	}

	suggested := total.Div(decimal.NewFromInt(int64(months))).
		Mul(decimal.NewFromFloat(1.1)).
		Ceil()
	return &suggested
}

// QuickSuggestion is a frequently repeated expense offered as a one-tap
// shortcut.
type QuickSuggestion struct {
	Label    string
	Amount   decimal.Decimal
	Category string
	Count    int
}

// quickSuggestionLimit caps how many shortcuts are surfaced.
const quickSuggestionLimit = 8

// QuickSuggestions returns up to eight expense descriptions seen at least
// three times, most frequent first, each with its rounded average amount.
func QuickSuggestions(transactions []api.Transaction) []QuickSuggestion {
	type bucket struct {
		first api.Transaction
		count int
		total decimal.Decimal
	}

	buckets := make(map[string]*bucket)
	var order []string
	for _, t := range transactions {
		if t.Type != api.TypeExpense {
			continue
		}
		key := t.Description + "-" + t.Category
		b, ok := buckets[key]
		if !ok {
			b = &bucket{first: t, total: decimal.Zero}
			buckets[key] = b
			order = append(order, key)
		}
		b.count++
		b.total = b.total.Add(t.Amount)
	}

	var frequent []*bucket
	for _, key := range order {
		if b := buckets[key]; b.count >= 3 {
			frequent = append(frequent, b)
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return frequent[i].count > frequent[j].count
	})
	if len(frequent) > quickSuggestionLimit {
		frequent = frequent[:quickSuggestionLimit]
	}

	suggestions := make([]QuickSuggestion, 0, len(frequent))
	for _, b := range frequent {
		suggestions = append(suggestions, QuickSuggestion{
			Label:    b.first.Description,
			Amount:   b.total.Div(decimal.NewFromInt(int64(b.count))).Round(0),
			Category: b.first.Category,
			Count:    b.count,
		})
	}
	return suggestions
}

// TopCategory returns the category with the highest month-to-date expense
// total and its share of total spend as a percentage. ok is false when the
// month has no expenses.
func TopCategory(transactions []api.Transaction, now api.Date) (category string, share decimal.Decimal, ok bool) {
	totals := make(map[string]decimal.Decimal)
	var names []string
	overall := decimal.Zero
	for _, t := range transactions {
		if t.Type != api.TypeExpense || !t.Date.SameMonth(now) {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			names = append(names, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		overall = overall.Add(t.Amount)
	}
	if !overall.IsPositive() {
		return "", decimal.Zero, false
	}

	sort.Strings(names)
	for _, name := range names {
		if category == "" || totals[name].GreaterThan(totals[category]) {
			category = name
		}
	}
	return category, totals[category].Div(overall).Mul(hundred), true
}

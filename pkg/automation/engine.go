package automation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

// Engine runs the automation sweeps against the record store and raises
// notifications through the sink. Every failure inside a sweep degrades to
// skipping the affected item; nothing here is fatal to the process.
type Engine struct {
	store      api.Store
	sink       api.Sink
	ledger     api.Ledger
	clock      api.Clock
	classifier *Classifier
	logger     *slog.Logger
}

// NewEngine wires the engine's collaborators. A nil clock means the system
// clock, a nil classifier means the default keyword table, and a nil logger
// means slog.Default.
func NewEngine(store api.Store, sink api.Sink, ledger api.Ledger, clock api.Clock, classifier *Classifier, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = api.SystemClock{}
	}
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:      store,
		sink:       sink,
		ledger:     ledger,
		clock:      clock,
		classifier: classifier,
		logger:     logger,
	}
}

func (e *Engine) today() api.Date { return api.DateOf(e.clock.Now()) }

// Classify assigns a category to a description using the keyword table and
// transaction history. A store read failure degrades to rule-only
// classification; Classify itself never fails.
func (e *Engine) Classify(ctx context.Context, description string) string {
	history, err := e.store.Transactions(ctx)
	if err != nil {
		e.logger.Warn("classify without history", "error", err)
		history = nil
	}
	return e.classifier.Classify(description, history)
}

// CheckRecurring is the hourly sweep: it surfaces due recurrence candidates
// through the sink, at most once per group per day. Candidates are advisory;
// persisting a new occurrence requires AcceptRecurring.
func (e *Engine) CheckRecurring(ctx context.Context) ([]Candidate, error) {
	transactions, err := e.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	asOf := e.today()
	settings := e.settings(ctx)

	candidates := DetectDue(transactions, asOf)
	for _, c := range candidates {
		condition := "suggest:" + asOf.String()
		if e.ledger.Marked(c.Key(), condition) {
			continue
		}
		e.ledger.Mark(c.Key(), condition)

		e.sink.Notify(ctx, api.Notification{
			Kind:    api.NoteRecurringSuggestion,
			Subject: c.Last.ID,
			Message: fmt.Sprintf("Add recurring %s: %s (%s)?",
				c.Last.Type, c.Last.Description, formatAmount(c.Last.Amount, settings.Currency)),
		})
	}

	return candidates, nil
}

// AcceptRecurring persists the new occurrence for an accepted candidate.
// This is the one explicit accept signal per occurrence; the sweep never
// commits on its own.
func (e *Engine) AcceptRecurring(ctx context.Context, c Candidate) (api.Transaction, error) {
	t := c.NewOccurrence(e.today(), e.clock.Now())
	if err := e.store.SaveTransaction(ctx, t); err != nil {
		return api.Transaction{}, fmt.Errorf("saving recurring transaction: %w", err)
	}
	e.logger.Info("recurring transaction added",
		"description", t.Description,
		"amount", t.Amount,
	)
	return t, nil
}

// CheckBudget is the daily sweep: it evaluates month-to-date spend against
// the configured ceiling. Alerts are returned regardless of notification
// settings; sink delivery is gated on them.
func (e *Engine) CheckBudget(ctx context.Context) ([]BudgetAlert, error) {
	transactions, err := e.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	now := e.today()
	alerts := EvaluateBudget(transactions, settings, now, e.ledger)
	for _, a := range alerts {
		e.logger.Info("budget alert",
			"kind", a.Kind,
			"spent", a.Spent,
			"budget", a.Budget,
		)
		if !settings.Notifications {
			continue
		}
		e.sink.Notify(ctx, budgetNotification(a, settings.Currency))
	}

	if category, share, ok := TopCategory(transactions, now); ok && share.GreaterThanOrEqual(decimal.NewFromInt(40)) {
		e.logger.Info("spending insight",
			"category", category,
			"share_percent", share.Round(0),
		)
	}

	return alerts, nil
}

func budgetNotification(a BudgetAlert, currency string) api.Notification {
	n := api.Notification{Subject: budgetSubject}
	switch a.Kind {
	case AlertExceeded:
		n.Kind = api.NoteBudgetExceeded
		n.Message = fmt.Sprintf("Budget exceeded: spent %s of %s",
			formatAmount(a.Spent, currency), formatAmount(a.Budget, currency))
	default:
		n.Kind = api.NoteBudgetWarning
		n.Message = fmt.Sprintf("90%% of budget used: spent %s of %s",
			formatAmount(a.Spent, currency), formatAmount(a.Budget, currency))
	}
	return n
}

// CheckReminders is the short-cadence sweep over open tasks with due dates.
// The whole sweep is skipped while notifications are disabled in settings.
func (e *Engine) CheckReminders(ctx context.Context) ([]Reminder, error) {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if !settings.Notifications {
		return nil, nil
	}

	tasks, err := e.store.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	reminders := DueReminders(tasks, e.clock.Now(), e.ledger)
	for _, r := range reminders {
		e.sink.Notify(ctx, api.Notification{
			Kind:    api.NoteTaskReminder,
			Subject: r.Task.ID,
			Message: reminderMessage(r),
		})
	}
	return reminders, nil
}

func reminderMessage(r Reminder) string {
	switch r.Window {
	case RemindOverdue:
		return "Task overdue: " + r.Task.Title
	case Remind1Hour:
		return "Task due in 1 hour: " + r.Task.Title
	default:
		return "Task due in 24 hours: " + r.Task.Title
	}
}

// AddExpense records a manually or textually entered expense, categorizing
// it when auto-categorization is enabled.
func (e *Engine) AddExpense(ctx context.Context, description string, amount decimal.Decimal, notes string) (api.Transaction, error) {
	if amount.IsNegative() {
		return api.Transaction{}, fmt.Errorf("amount %s: %w", amount, api.ErrMalformedInput)
	}

	settings := e.settings(ctx)
	category := CategoryOther
	if settings.AutoCategorize {
		category = e.Classify(ctx, description)
	}

	t := api.Transaction{
		ID:          uuid.NewString(),
		Type:        api.TypeExpense,
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        e.today(),
		Payment:     "card",
		Notes:       notes,
		CreatedAt:   e.clock.Now(),
	}
	if err := e.store.SaveTransaction(ctx, t); err != nil {
		return api.Transaction{}, fmt.Errorf("saving expense: %w", err)
	}
	return t, nil
}

// AddIncome records an income entry.
func (e *Engine) AddIncome(ctx context.Context, description string, amount decimal.Decimal, notes string) (api.Transaction, error) {
	if amount.IsNegative() {
		return api.Transaction{}, fmt.Errorf("amount %s: %w", amount, api.ErrMalformedInput)
	}

	t := api.Transaction{
		ID:          uuid.NewString(),
		Type:        api.TypeIncome,
		Description: description,
		Amount:      amount,
		Category:    "Income",
		Date:        e.today(),
		Notes:       notes,
		CreatedAt:   e.clock.Now(),
	}
	if err := e.store.SaveTransaction(ctx, t); err != nil {
		return api.Transaction{}, fmt.Errorf("saving income: %w", err)
	}
	return t, nil
}

// AddShoppingItem puts a new unpurchased item on the shopping list.
func (e *Engine) AddShoppingItem(ctx context.Context, name string) (api.ShoppingItem, error) {
	item := api.ShoppingItem{
		ID:        uuid.NewString(),
		Item:      name,
		Quantity:  1,
		Price:     decimal.Zero,
		Category:  CategoryOther,
		CreatedAt: e.clock.Now(),
	}
	if err := e.store.SaveShoppingItem(ctx, item); err != nil {
		return api.ShoppingItem{}, fmt.Errorf("saving shopping item: %w", err)
	}
	return item, nil
}

// AddTask creates a medium-priority task.
func (e *Engine) AddTask(ctx context.Context, title string) (api.Task, error) {
	task := api.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Priority:  api.PriorityMedium,
		Category:  "personal",
		CreatedAt: e.clock.Now(),
	}
	if err := e.store.SaveTask(ctx, task); err != nil {
		return api.Task{}, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// settings reads a snapshot, falling back to defaults on store failure so
// sweeps stay live.
func (e *Engine) settings(ctx context.Context) api.Settings {
	settings, err := e.store.Settings(ctx)
	if err != nil {
		e.logger.Warn("using default settings", "error", err)
		return api.DefaultSettings()
	}
	return settings
}

// formatAmount renders an amount for notification text in the configured
// currency, falling back to a plain "CODE 1.23" form for unknown codes.
func formatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	if money.GetCurrency(currency) == nil {
		return currency + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(2).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

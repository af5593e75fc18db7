// Package api defines the core records and collaborator interfaces for tally.
package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money going out from money coming in.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Transaction is a single ledger entry. Past transactions are immutable;
// corrections are made by deleting and creating anew.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
	Payment     string          `json:"payment,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	// Recurring marks transactions created from an accepted recurrence
	// suggestion.
	Recurring bool `json:"recurring,omitempty"`
	// FromShopping marks transactions synthesized from a purchased
	// shopping item.
	FromShopping bool `json:"fromShopping,omitempty"`
}

// Priority is a task's urgency level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is a to-do item. DueDate keeps a time of day because reminder lead
// times are measured in hours.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ShoppingItem is an entry on the shopping list. PurchaseID is reissued on
// every not-purchased to purchased transition and keys the expense
// conversion, so toggling purchased off and back on converts again while
// repeated saves of the same purchase do not.
type ShoppingItem struct {
	ID         string          `json:"id"`
	Item       string          `json:"item"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Category   string          `json:"category"`
	Purchased  bool            `json:"purchased"`
	PurchaseID string          `json:"purchaseId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Settings is the user configuration, read as a snapshot per sweep and never
// mutated by the automation engine.
type Settings struct {
	Currency       string          `json:"currency"`
	Budget         decimal.Decimal `json:"budget"`
	Notifications  bool            `json:"notifications"`
	Voice          bool            `json:"voice"`
	AutoCategorize bool            `json:"autoCateg"`
	Theme          string          `json:"theme"`
}

// DefaultSettings returns the settings used until the user changes them.
// A zero budget means no budget is configured.
func DefaultSettings() Settings {
	return Settings{
		Currency:       "USD",
		Theme:          "light",
		Notifications:  true,
		Voice:          true,
		AutoCategorize: true,
		Budget:         decimal.Zero,
	}
}

// Store is the durable record store. Implementations need not preserve
// insertion order; callers re-sort when order matters.
type Store interface {
	Transactions(ctx context.Context) ([]Transaction, error)
	SaveTransaction(ctx context.Context, t Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	Tasks(ctx context.Context) ([]Task, error)
	SaveTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id string) error

	ShoppingItems(ctx context.Context) ([]ShoppingItem, error)
	SaveShoppingItem(ctx context.Context, item ShoppingItem) error
	DeleteShoppingItem(ctx context.Context, id string) error

	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// NotificationKind identifies what a notification is about.
type NotificationKind string

const (
	NoteBudgetWarning       NotificationKind = "budget-warning"
	NoteBudgetExceeded      NotificationKind = "budget-exceeded"
	NoteTaskReminder        NotificationKind = "task-reminder"
	NoteRecurringSuggestion NotificationKind = "recurring-suggestion"
	NoteExpenseAdded        NotificationKind = "expense-added"
)

// Notification is a user-facing alert. The engine decides whether and what
// to notify; sinks decide how it is displayed.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Subject string           `json:"subject"`
	Message string           `json:"message"`
}

// Sink surfaces notifications to the user. Delivery is fire-and-forget: a
// failed notification must never block or roll back the state change it
// reports on, so Notify returns nothing and implementations log their own
// failures.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Clock provides the current time. It is injected everywhere the automation
// engine reads time so that every sweep is deterministic given its inputs.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Ledger records which (subject, condition) alerts have already fired during
// the current suppression epoch. It is a namespace separate from domain
// records.
type Ledger interface {
	// Marked reports whether the flag is set.
	Marked(subject, condition string) bool
	// Mark sets the flag.
	Mark(subject, condition string)
	// Clear removes the flag, re-arming the alert.
	Clear(subject, condition string)
}

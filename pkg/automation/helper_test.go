package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

// fakeClock returns a fixed instant.
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

// fakeSink records every notification it receives.
type fakeSink struct {
	notes []api.Notification
}

func (s *fakeSink) Notify(_ context.Context, n api.Notification) {
	s.notes = append(s.notes, n)
}

// fakeStore is an in-memory store with per-collection error injection.
type fakeStore struct {
	transactions []api.Transaction
	tasks        []api.Task
	shopping     []api.ShoppingItem
	settings     api.Settings

	failTransactions bool
	failSettings     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: api.DefaultSettings()}
}

func (s *fakeStore) Transactions(context.Context) ([]api.Transaction, error) {
	if s.failTransactions {
		return nil, fmt.Errorf("boom: %w", api.ErrStoreUnavailable)
	}
	return append([]api.Transaction(nil), s.transactions...), nil
}

func (s *fakeStore) SaveTransaction(_ context.Context, t api.Transaction) error {
	if s.failTransactions {
		return fmt.Errorf("boom: %w", api.ErrStoreUnavailable)
	}
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *fakeStore) DeleteTransaction(_ context.Context, id string) error {
	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	return nil
}

func (s *fakeStore) Tasks(context.Context) ([]api.Task, error) {
	return append([]api.Task(nil), s.tasks...), nil
}

func (s *fakeStore) SaveTask(_ context.Context, t api.Task) error {
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *fakeStore) DeleteTask(context.Context, string) error { return nil }

func (s *fakeStore) ShoppingItems(context.Context) ([]api.ShoppingItem, error) {
	return append([]api.ShoppingItem(nil), s.shopping...), nil
}

func (s *fakeStore) SaveShoppingItem(_ context.Context, item api.ShoppingItem) error {
	for i := range s.shopping {
		if s.shopping[i].ID == item.ID {
			s.shopping[i] = item
			return nil
		}
	}
	s.shopping = append(s.shopping, item)
	return nil
}

func (s *fakeStore) DeleteShoppingItem(context.Context, string) error { return nil }

func (s *fakeStore) Settings(context.Context) (api.Settings, error) {
	if s.failSettings {
		return api.Settings{}, fmt.Errorf("boom: %w", api.ErrStoreUnavailable)
	}
	return s.settings, nil
}

func (s *fakeStore) SaveSettings(_ context.Context, settings api.Settings) error {
	s.settings = settings
	return nil
}

func expense(description string, amount float64, date string) api.Transaction {
	d, err := api.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return api.Transaction{
		ID:          description + "-" + date,
		Type:        api.TypeExpense,
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Category:    "Food",
		Date:        d,
		CreatedAt:   d.Time(),
	}
}

func mustDate(s string) api.Date {
	d, err := api.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

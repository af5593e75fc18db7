// Package memory is a slice-backed implementation of api.Store. It is safe
// for concurrent use. Data is lost on restart; use the postgres store for
// persistence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tallyhq/tally/pkg/api"
)

// Store keeps every record kind in insertion order so list results are
// stable across calls. Saves upsert by ID.
type Store struct {
	mu           sync.RWMutex
	transactions []api.Transaction
	tasks        []api.Task
	shopping     []api.ShoppingItem
	settings     api.Settings
}

func New() *Store {
	return &Store{settings: api.DefaultSettings()}
}

func (s *Store) Transactions(context.Context) ([]api.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Transaction(nil), s.transactions...), nil
}

func (s *Store) SaveTransaction(_ context.Context, t api.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required: %w", api.ErrMalformedInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, api.ErrNotFound)
}

func (s *Store) Tasks(context.Context) ([]api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t
		if t.DueDate != nil {
			due := *t.DueDate
			out[i].DueDate = &due
		}
	}
	return out, nil
}

func (s *Store) SaveTask(_ context.Context, t api.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", api.ErrMalformedInput)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return nil
		}
	}
	s.tasks = append(s.tasks, t)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, api.ErrNotFound)
}

func (s *Store) ShoppingItems(context.Context) ([]api.ShoppingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.ShoppingItem(nil), s.shopping...), nil
}

func (s *Store) SaveShoppingItem(_ context.Context, item api.ShoppingItem) error {
	if item.ID == "" {
		return fmt.Errorf("shopping item id is required: %w", api.ErrMalformedInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.shopping {
		if s.shopping[i].ID == item.ID {
			s.shopping[i] = item
			return nil
		}
	}
	s.shopping = append(s.shopping, item)
	return nil
}

func (s *Store) DeleteShoppingItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.shopping {
		if s.shopping[i].ID == id {
			s.shopping = append(s.shopping[:i], s.shopping[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("shopping item %s: %w", id, api.ErrNotFound)
}

func (s *Store) Settings(context.Context) (api.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings api.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

var _ api.Store = (*Store)(nil)

// Package backup writes and restores full JSON snapshots of the record
// store: every transaction, task, and shopping item plus settings.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tallyhq/tally/pkg/api"
)

// Snapshot is the on-disk backup format.
type Snapshot struct {
	Transactions []api.Transaction  `json:"transactions"`
	Tasks        []api.Task         `json:"tasks"`
	Shopping     []api.ShoppingItem `json:"shopping"`
	Settings     api.Settings       `json:"settings"`
	ExportDate   time.Time          `json:"exportDate"`
}

// Export reads the whole store and writes it to path.
func Export(ctx context.Context, store api.Store, path string) (*Snapshot, error) {
	snap, err := Take(ctx, store)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing snapshot file: %w", err)
	}
	return snap, nil
}

// Take reads the whole store into a snapshot.
func Take(ctx context.Context, store api.Store) (*Snapshot, error) {
	transactions, err := store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	tasks, err := store.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	shopping, err := store.ShoppingItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shopping items: %w", err)
	}
	settings, err := store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	return &Snapshot{
		Transactions: transactions,
		Tasks:        tasks,
		Shopping:     shopping,
		Settings:     settings,
		ExportDate:   time.Now().UTC(),
	}, nil
}

// Restore loads a snapshot file and upserts its records into the store.
// Existing records with other IDs are left alone.
func Restore(ctx context.Context, store api.Store, path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", api.ErrMalformedInput)
	}

	return &snap, Apply(ctx, store, &snap)
}

// Apply upserts a snapshot's records into the store.
func Apply(ctx context.Context, store api.Store, snap *Snapshot) error {
	for _, t := range snap.Transactions {
		if err := store.SaveTransaction(ctx, t); err != nil {
			return fmt.Errorf("restoring transaction %s: %w", t.ID, err)
		}
	}
	for _, task := range snap.Tasks {
		if err := store.SaveTask(ctx, task); err != nil {
			return fmt.Errorf("restoring task %s: %w", task.ID, err)
		}
	}
	for _, item := range snap.Shopping {
		if err := store.SaveShoppingItem(ctx, item); err != nil {
			return fmt.Errorf("restoring shopping item %s: %w", item.ID, err)
		}
	}
	if err := store.SaveSettings(ctx, snap.Settings); err != nil {
		return fmt.Errorf("restoring settings: %w", err)
	}
	return nil
}

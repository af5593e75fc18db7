package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

func TestStore_TransactionUpsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := api.Transaction{ID: "t1", Description: "Coffee", Amount: decimal.NewFromInt(5)}
	if err := s.SaveTransaction(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTransaction(ctx, api.Transaction{ID: "t2", Description: "Lunch"}); err != nil {
		t.Fatal(err)
	}

	// Saving an existing ID replaces in place, keeping insertion order.
	first.Description = "Espresso"
	if err := s.SaveTransaction(ctx, first); err != nil {
		t.Fatal(err)
	}

	got, err := s.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].Description != "Espresso" || got[1].ID != "t2" {
		t.Errorf("transactions = %+v", got)
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	s := New()
	err := s.SaveTransaction(context.Background(), api.Transaction{Description: "Coffee"})
	if !errors.Is(err, api.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := s.SaveTransaction(ctx, api.Transaction{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteTransaction(ctx, "t2"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Transactions(ctx)
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t3" {
		t.Errorf("transactions = %+v", got)
	}

	if err := s.DeleteTransaction(ctx, "missing"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListCopiesAreIndependent(t *testing.T) {
	s := New()
	ctx := context.Background()

	due := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if err := s.SaveTask(ctx, api.Task{ID: "t1", Title: "Call doctor", DueDate: &due}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Tasks(ctx)
	got[0].Title = "mutated"
	*got[0].DueDate = due.AddDate(0, 0, 7)

	again, _ := s.Tasks(ctx)
	if again[0].Title != "Call doctor" {
		t.Errorf("title = %q, caller mutation leaked into store", again[0].Title)
	}
	if !again[0].DueDate.Equal(due) {
		t.Errorf("due = %v, caller mutation leaked into store", again[0].DueDate)
	}
}

func TestStore_DefaultSettings(t *testing.T) {
	s := New()
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if settings != api.DefaultSettings() {
		t.Errorf("settings = %+v", settings)
	}

	settings.Budget = decimal.NewFromInt(500)
	settings.Notifications = false
	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}
	saved, _ := s.Settings(ctx)
	if saved.Notifications || !saved.Budget.Equal(decimal.NewFromInt(500)) {
		t.Errorf("settings = %+v", saved)
	}
}

func TestStore_ShoppingRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	item := api.ShoppingItem{ID: "s1", Item: "Milk", Quantity: 2, Price: decimal.NewFromInt(3)}
	if err := s.SaveShoppingItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	item.Purchased = true
	item.PurchaseID = "p1"
	if err := s.SaveShoppingItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	got, _ := s.ShoppingItems(ctx)
	if len(got) != 1 || !got[0].Purchased || got[0].PurchaseID != "p1" {
		t.Errorf("items = %+v", got)
	}

	if err := s.DeleteShoppingItem(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ShoppingItems(ctx); len(got) != 0 {
		t.Errorf("items = %+v, want empty", got)
	}
}

package automation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

// shoppingNotes tags the provenance of converted expenses.
const shoppingNotes = "Auto-created from shopping list"

// ConvertPurchase synthesizes an expense for a shopping item that
// transitioned to purchased with a positive price. The item's PurchaseID
// keys the conversion, so repeated saves of the same purchase convert
// nothing while a genuine re-purchase (new PurchaseID) converts again. The
// returned transaction is nil when no conversion happened.
func (e *Engine) ConvertPurchase(ctx context.Context, item api.ShoppingItem) (*api.Transaction, error) {
	if !item.Purchased || !item.Price.IsPositive() {
		return nil, nil
	}
	if item.PurchaseID == "" {
		return nil, fmt.Errorf("shopping item %s has no purchase id: %w", item.ID, api.ErrMalformedInput)
	}

	condition := "purchase:" + item.PurchaseID
	if e.ledger.Marked(item.ID, condition) {
		return nil, nil
	}

	settings := e.settings(ctx)

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}

	t := api.Transaction{
		ID:           uuid.NewString(),
		Type:         api.TypeExpense,
		Description:  item.Item,
		Amount:       item.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Category:     e.Classify(ctx, item.Item),
		Date:         e.today(),
		Payment:      "card",
		Notes:        shoppingNotes,
		CreatedAt:    e.clock.Now(),
		FromShopping: true,
	}

	if err := e.store.SaveTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("saving converted expense: %w", err)
	}
	e.ledger.Mark(item.ID, condition)

	if settings.Notifications {
		e.sink.Notify(ctx, api.Notification{
			Kind:    api.NoteExpenseAdded,
			Subject: t.ID,
			Message: "Added expense: " + formatAmount(t.Amount, settings.Currency),
		})
	}

	return &t, nil
}

// CheckShopping is the sweep form of purchase conversion: it scans the
// shopping list and converts every purchased item that still carries a
// pending PurchaseID. After a successful conversion the item is saved back
// with its PurchaseID cleared, so the conversion stays exactly-once across
// restarts without relying on the in-memory ledger. A failed item is logged
// and skipped; the sweep continues.
func (e *Engine) CheckShopping(ctx context.Context) ([]api.Transaction, error) {
	items, err := e.store.ShoppingItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shopping items: %w", err)
	}

	var created []api.Transaction
	for _, item := range items {
		if !item.Purchased || item.PurchaseID == "" {
			continue
		}

		t, err := e.ConvertPurchase(ctx, item)
		if err != nil {
			e.logger.Warn("skipping shopping conversion", "item", item.ID, "error", err)
			continue
		}
		if t == nil {
			continue
		}

		item.PurchaseID = ""
		if err := e.store.SaveShoppingItem(ctx, item); err != nil {
			// The ledger still suppresses a re-conversion this run; the
			// next sweep retries the save via ConvertPurchase's guard.
			e.logger.Warn("could not clear purchase id", "item", item.ID, "error", err)
		}
		created = append(created, *t)
	}
	return created, nil
}

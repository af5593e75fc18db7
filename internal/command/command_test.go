package command

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in          string
		kind        Kind
		description string
		amount      string
	}{
		{"add coffee 5 dollars", AddExpense, "Coffee", "5"},
		{"expense lunch 15", AddExpense, "Lunch", "15"},
		{"spent parking 2.50", AddExpense, "Parking", "2.5"},
		{"add train ticket 12 bucks", AddExpense, "Train ticket", "12"},
		{"income salary 1000", AddIncome, "Salary", "1000"},
		{"add milk to shopping", AddShopping, "Milk", ""},
		{"add bread to the list", AddShopping, "Bread", ""},
		{"shopping eggs", AddShopping, "Eggs", ""},
		{"task call doctor", AddTask, "Call doctor", ""},
		{"remind me to pay rent", AddTask, "Pay rent", ""},
		{"todo water the plants", AddTask, "Water the plants", ""},
		{"show my budget", ShowBudget, "", ""},
		{"how is my spending", ShowBudget, "", ""},
		{"ADD Coffee 5", AddExpense, "Coffee", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", got.Kind, tt.kind)
			}
			if got.Description != tt.description {
				t.Errorf("description = %q, want %q", got.Description, tt.description)
			}
			if tt.amount != "" {
				want, _ := decimal.NewFromString(tt.amount)
				if !got.Amount.Equal(want) {
					t.Errorf("amount = %s, want %s", got.Amount, want)
				}
			}
		})
	}
}

func TestParse_ExpenseBeatsShopping(t *testing.T) {
	// "add <thing> <number>" must be an expense even though the shopping
	// rule would also match the text.
	got, err := Parse("add coffee 5")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != AddExpense {
		t.Errorf("kind = %s, want %s", got.Kind, AddExpense)
	}
}

func TestParse_MalformedAmount(t *testing.T) {
	_, err := Parse("add coffee 5.5.5")
	if !errors.Is(err, api.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

func TestParse_Unrecognized(t *testing.T) {
	_, err := Parse("play some music")
	if !errors.Is(err, ErrUnrecognized) {
		t.Errorf("err = %v, want ErrUnrecognized", err)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ")
	if !errors.Is(err, api.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

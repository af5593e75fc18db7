package automation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/pkg/api"
)

func weeklyCoffee() []api.Transaction {
	return []api.Transaction{
		expense("Coffee", 5, "2024-01-01"),
		expense("Coffee", 5, "2024-01-08"),
		expense("Coffee", 5, "2024-01-15"),
	}
}

func TestDetectDue_ConstantInterval(t *testing.T) {
	transactions := weeklyCoffee()

	// Average interval is 7 days; due threshold is 0.9*7 = 6.3 days.
	if got := DetectDue(transactions, mustDate("2024-01-21")); len(got) != 0 {
		t.Errorf("at 6 days since last, got %d candidates, want 0", len(got))
	}

	candidates := DetectDue(transactions, mustDate("2024-01-22"))
	if len(candidates) != 1 {
		t.Fatalf("at 7 days since last, got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.AverageIntervalDays != 7 {
		t.Errorf("AverageIntervalDays = %v, want 7", c.AverageIntervalDays)
	}
	if c.DaysSinceLast != 7 {
		t.Errorf("DaysSinceLast = %d, want 7", c.DaysSinceLast)
	}
	if c.Last.Date != mustDate("2024-01-15") {
		t.Errorf("Last.Date = %v, want 2024-01-15", c.Last.Date)
	}
}

func TestDetectDue_SingleOccurrenceIgnored(t *testing.T) {
	transactions := []api.Transaction{expense("Rent", 1200, "2024-01-01")}
	if got := DetectDue(transactions, mustDate("2024-06-01")); len(got) != 0 {
		t.Errorf("got %d candidates from a single occurrence, want 0", len(got))
	}
}

func TestDetectDue_SameDayDuplicateSuppressed(t *testing.T) {
	transactions := append(weeklyCoffee(), expense("Coffee", 5, "2024-01-22"))
	if got := DetectDue(transactions, mustDate("2024-01-22")); len(got) != 0 {
		t.Errorf("got %d candidates despite same-day occurrence, want 0", len(got))
	}
}

func TestDetectDue_AmountSplitsGroups(t *testing.T) {
	transactions := []api.Transaction{
		expense("Coffee", 5, "2024-01-01"),
		expense("Coffee", 6, "2024-01-08"),
	}
	// Differing amounts mean two single-member groups, neither periodic.
	if got := DetectDue(transactions, mustDate("2024-06-01")); len(got) != 0 {
		t.Errorf("got %d candidates across amounts, want 0", len(got))
	}
}

// Irregular gaps produce a blended average with no outlier rejection: gaps
// of 5 and 60 days average to 32.5, so the group is due at 30 days
// (0.9*32.5 = 29.25) even though the recent rhythm was 5 days.
func TestDetectDue_IrregularGapsBlended(t *testing.T) {
	transactions := []api.Transaction{
		expense("Hosting", 20, "2024-01-01"),
		expense("Hosting", 20, "2024-03-01"), // 60-day gap
		expense("Hosting", 20, "2024-03-06"), // 5-day gap
	}

	if got := DetectDue(transactions, mustDate("2024-04-04")); len(got) != 0 {
		t.Errorf("at 29 days, got %d candidates, want 0", len(got))
	}
	if got := DetectDue(transactions, mustDate("2024-04-05")); len(got) != 1 {
		t.Errorf("at 30 days, got %d candidates, want 1", len(got))
	}
}

func TestDetectDue_DescriptionCaseInsensitive(t *testing.T) {
	transactions := []api.Transaction{
		expense("Coffee", 5, "2024-01-01"),
		expense("coffee", 5, "2024-01-08"),
	}
	candidates := DetectDue(transactions, mustDate("2024-01-15"))
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (case-insensitive grouping)", len(candidates))
	}
}

func TestDetectDue_DeterministicOrder(t *testing.T) {
	transactions := []api.Transaction{
		expense("Netflix", 15, "2024-01-01"),
		expense("Netflix", 15, "2024-01-31"),
		expense("Coffee", 5, "2024-01-01"),
		expense("Coffee", 5, "2024-01-31"),
	}
	candidates := DetectDue(transactions, mustDate("2024-03-15"))
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].Last.Description != "Coffee" || candidates[1].Last.Description != "Netflix" {
		t.Errorf("candidates out of order: %s, %s",
			candidates[0].Last.Description, candidates[1].Last.Description)
	}
}

func TestCandidate_NewOccurrence(t *testing.T) {
	last := expense("Coffee", 5, "2024-01-15")
	last.Payment = "card"
	c := Candidate{Last: last, AverageIntervalDays: 7, DaysSinceLast: 7}

	asOf := mustDate("2024-01-22")
	now := time.Date(2024, 1, 22, 10, 0, 0, 0, time.UTC)
	got := c.NewOccurrence(asOf, now)

	if got.ID == last.ID || got.ID == "" {
		t.Errorf("expected a fresh id, got %q", got.ID)
	}
	if got.Date != asOf {
		t.Errorf("Date = %v, want %v", got.Date, asOf)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if !got.Recurring {
		t.Error("expected Recurring to be set")
	}
	if got.Description != "Coffee" || !got.Amount.Equal(decimal.NewFromInt(5)) || got.Payment != "card" {
		t.Errorf("template fields not copied: %+v", got)
	}
}

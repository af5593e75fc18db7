package automation

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally/pkg/api"
)

// dueFraction is how far through the average interval a group must be
// before its next occurrence counts as due.
const dueFraction = 0.9

// Candidate is a detected-but-unconfirmed recurring transaction. It is
// advisory: nothing is persisted until a caller explicitly accepts it.
type Candidate struct {
	// Last is the most recent occurrence, used as the template.
	Last api.Transaction
	// AverageIntervalDays is the blended mean of the gaps between
	// occurrences. Irregular gaps are averaged as-is, with no outlier
	// rejection.
	AverageIntervalDays float64
	// DaysSinceLast is the whole days from Last.Date to the asOf day.
	DaysSinceLast int
}

// Key identifies the recurrence group the candidate came from.
func (c Candidate) Key() string {
	return groupKey(c.Last)
}

// NewOccurrence builds the transaction an accepted candidate creates: the
// template fields with a fresh id, the asOf date, and the recurring mark.
func (c Candidate) NewOccurrence(asOf api.Date, now time.Time) api.Transaction {
	t := c.Last
	t.ID = uuid.NewString()
	t.Date = asOf
	t.CreatedAt = now
	t.Recurring = true
	return t
}

func groupKey(t api.Transaction) string {
	return strings.ToLower(t.Description) + "-" + t.Amount.String()
}

// DetectDue groups transactions by (lowercased description, amount),
// estimates each group's period from the gaps between occurrences, and
// returns a candidate for every group whose next occurrence is due as of
// the given day. Groups with fewer than two members carry no periodicity
// and are skipped, as are groups already represented by an identical
// transaction dated asOf (the idempotence guard against duplicate
// creation). Candidates come back in deterministic group-key order.
func DetectDue(transactions []api.Transaction, asOf api.Date) []Candidate {
	groups := make(map[string][]api.Transaction)
	for _, t := range transactions {
		key := groupKey(t)
		groups[key] = append(groups[key], t)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var due []Candidate
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		total := 0
		for i := 1; i < len(group); i++ {
			total += group[i].Date.DaysSince(group[i-1].Date)
		}
		avg := float64(total) / float64(len(group)-1)

		last := group[len(group)-1]
		since := asOf.DaysSince(last.Date)
		if float64(since) < dueFraction*avg {
			continue
		}

		if hasOccurrenceOn(transactions, last, asOf) {
			continue
		}

		due = append(due, Candidate{
			Last:                last,
			AverageIntervalDays: avg,
			DaysSinceLast:       since,
		})
	}

	return due
}

func hasOccurrenceOn(transactions []api.Transaction, template api.Transaction, day api.Date) bool {
	for _, t := range transactions {
		if strings.EqualFold(t.Description, template.Description) && t.Amount.Equal(template.Amount) && t.Date == day {
			return true
		}
	}
	return false
}

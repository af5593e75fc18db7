package automation

import (
	"testing"
	"time"

	"github.com/tallyhq/tally/pkg/api"
)

func taskDueAt(id string, due time.Time) api.Task {
	return api.Task{
		ID:       id,
		Title:    "Call the doctor",
		Priority: api.PriorityMedium,
		DueDate:  &due,
	}
}

func TestDueReminders_Windows(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		due     time.Time
		window  ReminderWindow
		wantHit bool
	}{
		{"23.5 hours out", now.Add(23*time.Hour + 30*time.Minute), Remind24Hour, true},
		{"exactly 24 hours", now.Add(24 * time.Hour), Remind24Hour, true},
		{"25 hours out", now.Add(25 * time.Hour), "", false},
		{"22 hours out (between bands)", now.Add(22 * time.Hour), "", false},
		{"30 minutes out", now.Add(30 * time.Minute), Remind1Hour, true},
		{"exactly 1 hour", now.Add(time.Hour), Remind1Hour, true},
		{"just past due", now.Add(-time.Minute), RemindOverdue, true},
		{"long overdue", now.Add(-72 * time.Hour), RemindOverdue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewMemoryLedger()
			got := DueReminders([]api.Task{taskDueAt("t1", tt.due)}, now, ledger)
			if !tt.wantHit {
				if len(got) != 0 {
					t.Fatalf("got %+v, want none", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d reminders, want 1", len(got))
			}
			if got[0].Window != tt.window {
				t.Errorf("window = %s, want %s", got[0].Window, tt.window)
			}
		})
	}
}

func TestDueReminders_OneShotPerWindow(t *testing.T) {
	ledger := NewMemoryLedger()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	tasks := []api.Task{taskDueAt("t1", now.Add(-time.Hour))}

	if got := DueReminders(tasks, now, ledger); len(got) != 1 {
		t.Fatalf("first sweep: got %d reminders, want 1", len(got))
	}
	// Repeated sweeps after the due date never re-fire the overdue reminder.
	for i := 0; i < 5; i++ {
		now = now.Add(30 * time.Minute)
		if got := DueReminders(tasks, now, ledger); len(got) != 0 {
			t.Fatalf("sweep %d re-fired: %+v", i, got)
		}
	}
}

func TestDueReminders_WindowsIndependent(t *testing.T) {
	ledger := NewMemoryLedger()
	due := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	tasks := []api.Task{taskDueAt("t1", due)}

	// 23.5 hours before: 24-hour reminder.
	got := DueReminders(tasks, due.Add(-23*time.Hour-30*time.Minute), ledger)
	if len(got) != 1 || got[0].Window != Remind24Hour {
		t.Fatalf("24h sweep: %+v", got)
	}
	// 30 minutes before: 1-hour reminder still fires.
	got = DueReminders(tasks, due.Add(-30*time.Minute), ledger)
	if len(got) != 1 || got[0].Window != Remind1Hour {
		t.Fatalf("1h sweep: %+v", got)
	}
	// Past due: overdue still fires.
	got = DueReminders(tasks, due.Add(time.Hour), ledger)
	if len(got) != 1 || got[0].Window != RemindOverdue {
		t.Fatalf("overdue sweep: %+v", got)
	}
}

func TestDueReminders_DueDateChangeRearms(t *testing.T) {
	ledger := NewMemoryLedger()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	task := taskDueAt("t1", now.Add(-time.Hour))
	if got := DueReminders([]api.Task{task}, now, ledger); len(got) != 1 {
		t.Fatalf("initial overdue missing: %+v", got)
	}

	// Pushing the due date out and passing it again fires a fresh overdue.
	newDue := now.Add(time.Hour)
	task.DueDate = &newDue
	later := now.Add(2 * time.Hour)
	if got := DueReminders([]api.Task{task}, later, ledger); len(got) != 1 {
		t.Errorf("overdue after due-date change suppressed: %+v", got)
	}
}

func TestDueReminders_ExcludesCompletedAndDateless(t *testing.T) {
	ledger := NewMemoryLedger()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	done := taskDueAt("t1", now.Add(-time.Hour))
	done.Completed = true
	dateless := api.Task{ID: "t2", Title: "Someday"}

	if got := DueReminders([]api.Task{done, dateless}, now, ledger); len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

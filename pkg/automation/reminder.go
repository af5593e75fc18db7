package automation

import (
	"time"

	"github.com/tallyhq/tally/pkg/api"
)

// ReminderWindow is one of the three lead-time windows a task reminder can
// fire in. Each window is one-shot per (task, due date).
type ReminderWindow string

const (
	Remind24Hour  ReminderWindow = "24h"
	Remind1Hour   ReminderWindow = "1h"
	RemindOverdue ReminderWindow = "overdue"
)

// Reminder is a due reminder for a single task.
type Reminder struct {
	Task       api.Task
	Window     ReminderWindow
	HoursUntil float64
}

// DueReminders scans incomplete tasks with due dates and returns the
// reminders firing now. The 24-hour reminder fires only inside the narrow
// (23, 24] band, approximating the boundary crossing rather than firing on
// every scan while under a day remains; the scan cadence must therefore be
// under an hour. The overdue reminder fires once ever per (task, due date).
// Suppression keys embed the due date, so editing a task's due date re-arms
// all three windows.
func DueReminders(tasks []api.Task, now time.Time, ledger api.Ledger) []Reminder {
	var due []Reminder
	for _, task := range tasks {
		if task.Completed || task.DueDate == nil {
			continue
		}

		hoursUntil := task.DueDate.Sub(now).Hours()

		var window ReminderWindow
		switch {
		case hoursUntil < 0:
			window = RemindOverdue
		case hoursUntil <= 1:
			window = Remind1Hour
		case hoursUntil <= 24 && hoursUntil > 23:
			window = Remind24Hour
		default:
			continue
		}

		condition := string(window) + ":" + task.DueDate.UTC().Format(time.RFC3339)
		if ledger.Marked(task.ID, condition) {
			continue
		}
		ledger.Mark(task.ID, condition)

		due = append(due, Reminder{
			Task:       task,
			Window:     window,
			HoursUntil: hoursUntil,
		})
	}
	return due
}

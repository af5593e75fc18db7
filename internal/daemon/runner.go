// Package daemon provides the sweep scheduler for the tally daemon.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/pkg/automation"
)

// Intervals configures the sweep cadences. Zero values fall back to the
// defaults: hourly recurrence detection, daily budget checks, and reminder
// scans every 30 minutes.
type Intervals struct {
	Recurrence time.Duration
	Budget     time.Duration
	Reminders  time.Duration
}

func (i Intervals) withDefaults() Intervals {
	if i.Recurrence == 0 {
		i.Recurrence = time.Hour
	}
	if i.Budget == 0 {
		i.Budget = 24 * time.Hour
	}
	if i.Reminders == 0 {
		i.Reminders = 30 * time.Minute
	}
	return i
}

// Runner drives the automation engine on timers. All sweeps run on a single
// goroutine, so no two sweeps ever overlap.
type Runner struct {
	engine    *automation.Engine
	intervals Intervals
	logger    *slog.Logger
}

// New creates a runner. A nil logger means slog.Default.
func New(engine *automation.Engine, intervals Intervals, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		engine:    engine,
		intervals: intervals.withDefaults(),
		logger:    logger.With("component", "daemon"),
	}
}

// Run blocks until the context is canceled. Every sweep runs once at
// startup, then on its own ticker. A failed sweep is logged and retried at
// the next tick; nothing here stops the loop except cancellation.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("daemon started",
		"recurrence_interval", r.intervals.Recurrence,
		"budget_interval", r.intervals.Budget,
		"reminder_interval", r.intervals.Reminders,
	)

	recurrence := time.NewTicker(r.intervals.Recurrence)
	defer recurrence.Stop()
	budget := time.NewTicker(r.intervals.Budget)
	defer budget.Stop()
	reminders := time.NewTicker(r.intervals.Reminders)
	defer reminders.Stop()

	r.sweepRecurrence(ctx)
	r.sweepBudget(ctx)
	r.sweepReminders(ctx)
	r.sweepShopping(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("daemon stopped")
			return ctx.Err()
		case <-recurrence.C:
			r.sweepRecurrence(ctx)
		case <-budget.C:
			r.sweepBudget(ctx)
		case <-reminders.C:
			// Shopping conversion rides the short cadence so a purchase
			// shows up as an expense within one reminder interval.
			r.sweepReminders(ctx)
			r.sweepShopping(ctx)
		}
	}
}

func (r *Runner) sweepRecurrence(ctx context.Context) {
	candidates, err := r.engine.CheckRecurring(ctx)
	if err != nil {
		r.logger.Error("recurrence sweep failed", "error", err)
		return
	}
	if len(candidates) > 0 {
		r.logger.Info("recurrence sweep", "due_groups", len(candidates))
	}
}

func (r *Runner) sweepBudget(ctx context.Context) {
	alerts, err := r.engine.CheckBudget(ctx)
	if err != nil {
		r.logger.Error("budget sweep failed", "error", err)
		return
	}
	if len(alerts) > 0 {
		r.logger.Info("budget sweep", "alerts", len(alerts))
	}
}

func (r *Runner) sweepShopping(ctx context.Context) {
	created, err := r.engine.CheckShopping(ctx)
	if err != nil {
		r.logger.Error("shopping sweep failed", "error", err)
		return
	}
	if len(created) > 0 {
		r.logger.Info("shopping sweep", "converted", len(created))
	}
}

func (r *Runner) sweepReminders(ctx context.Context) {
	reminders, err := r.engine.CheckReminders(ctx)
	if err != nil {
		r.logger.Error("reminder sweep failed", "error", err)
		return
	}
	if len(reminders) > 0 {
		r.logger.Info("reminder sweep", "reminders", len(reminders))
	}
}

// Command tally runs a single text command against the record store, e.g.
//
//	tally "add coffee 5 dollars"
//	tally "remind me to pay rent"
//	tally "show my budget"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/command"
	"github.com/tallyhq/tally/pkg/api"
	"github.com/tallyhq/tally/pkg/automation"
	"github.com/tallyhq/tally/pkg/config"
	"github.com/tallyhq/tally/pkg/logging"
	"github.com/tallyhq/tally/pkg/notify"
	"github.com/tallyhq/tally/pkg/store/postgres"
)

func main() {
	logger := logging.Setup(logging.FromEnv())

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, `usage: tally "<command>"`)
		os.Exit(2)
	}
	text := strings.Join(os.Args[1:], " ")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Store != "postgres" {
		logger.Error("the tally command needs a persistent store, set TALLY_STORE=postgres")
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger.With("component", "store"))
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := automation.NewEngine(store, notify.NewLogSink(logger),
		automation.NewMemoryLedger(), nil, nil, logger)

	if err := run(ctx, engine, store, text); err != nil {
		switch {
		case errors.Is(err, command.ErrUnrecognized):
			fmt.Fprintln(os.Stderr, `command not recognized, try: "add coffee 5 dollars"`)
			os.Exit(2)
		case errors.Is(err, api.ErrMalformedInput):
			fmt.Fprintln(os.Stderr, "could not parse command:", err)
			os.Exit(2)
		default:
			logger.Error("command failed", "error", err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, engine *automation.Engine, store api.Store, text string) error {
	cmd, err := command.Parse(text)
	if err != nil {
		return err
	}

	switch cmd.Kind {
	case command.AddExpense:
		t, err := engine.AddExpense(ctx, cmd.Description, cmd.Amount, "Added via command")
		if err != nil {
			return err
		}
		fmt.Printf("Added expense: %s - %s (%s)\n", t.Description, t.Amount.StringFixed(2), t.Category)

	case command.AddIncome:
		t, err := engine.AddIncome(ctx, cmd.Description, cmd.Amount, "Added via command")
		if err != nil {
			return err
		}
		fmt.Printf("Added income: %s - %s\n", t.Description, t.Amount.StringFixed(2))

	case command.AddShopping:
		item, err := engine.AddShoppingItem(ctx, cmd.Description)
		if err != nil {
			return err
		}
		fmt.Printf("Added to shopping: %s\n", item.Item)

	case command.AddTask:
		task, err := engine.AddTask(ctx, cmd.Description)
		if err != nil {
			return err
		}
		fmt.Printf("Added task: %s\n", task.Title)

	case command.ShowBudget:
		return showBudget(ctx, store)
	}
	return nil
}

func showBudget(ctx context.Context, store api.Store) error {
	settings, err := store.Settings(ctx)
	if err != nil {
		return err
	}
	transactions, err := store.Transactions(ctx)
	if err != nil {
		return err
	}

	now := api.DateOf(time.Now())
	spent := automation.MonthSpend(transactions, now)
	if settings.Budget.IsPositive() {
		fmt.Printf("Spent %s of %s this month\n", spent.StringFixed(2), settings.Budget.StringFixed(2))
	} else {
		fmt.Printf("Spent %s this month (no budget set)\n", spent.StringFixed(2))
		if suggested := automation.SuggestBudget(transactions, now); suggested != nil {
			fmt.Printf("Suggested budget from recent spending: %s\n", suggested.StringFixed(2))
		}
	}

	if category, share, ok := automation.TopCategory(transactions, now); ok {
		fmt.Printf("Top category: %s (%s%%)\n", category, share.Round(0))
	}

	if suggestions := automation.QuickSuggestions(transactions); len(suggestions) > 0 {
		fmt.Println("Frequent expenses:")
		for _, s := range suggestions {
			fmt.Printf("  %s - %s (%s, %dx)\n", s.Label, s.Amount.StringFixed(2), s.Category, s.Count)
		}
	}
	return nil
}

// Command tally-export moves stored records out of (or back into) the
// database: append transactions to a Google Sheet, or write/restore a full
// JSON backup.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/tallyhq/tally/pkg/api"
	"github.com/tallyhq/tally/pkg/client"
	"github.com/tallyhq/tally/pkg/config"
	"github.com/tallyhq/tally/pkg/export/backup"
	"github.com/tallyhq/tally/pkg/export/sheets"
	"github.com/tallyhq/tally/pkg/logging"
	"github.com/tallyhq/tally/pkg/store/postgres"
)

func main() {
	logger := logging.Setup(logging.FromEnv())

	month := flag.String("month", "", "only export transactions from this month (YYYY-MM)")
	backupPath := flag.String("backup", "", "write a full JSON snapshot to this file instead of exporting to sheets")
	restorePath := flag.String("restore", "", "restore a JSON snapshot from this file into the store")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	toSheets := *backupPath == "" && *restorePath == ""
	if toSheets {
		if cfg.Sheets.Name == "" {
			logger.Error("TALLY_SHEETS_NAME is required")
			os.Exit(1)
		}
		if cfg.Sheets.ID == "" && cfg.Sheets.Title == "" {
			logger.Error("either TALLY_SHEETS_ID or TALLY_SHEETS_TITLE is required")
			os.Exit(1)
		}
	}
	if cfg.Store != "postgres" {
		logger.Error("export needs a persistent store, set TALLY_STORE=postgres")
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

	if *restorePath != "" {
		snap, err := backup.Restore(ctx, store, *restorePath)
		if err != nil {
			logger.Error("restore failed", "error", err)
			os.Exit(1)
		}
		logger.Info("restore complete",
			"transactions", len(snap.Transactions),
			"tasks", len(snap.Tasks),
			"shopping_items", len(snap.Shopping),
		)
		return
	}
	if *backupPath != "" {
		snap, err := backup.Export(ctx, store, *backupPath)
		if err != nil {
			logger.Error("backup failed", "error", err)
			os.Exit(1)
		}
		logger.Info("backup complete",
			"path", *backupPath,
			"transactions", len(snap.Transactions),
			"tasks", len(snap.Tasks),
			"shopping_items", len(snap.Shopping),
		)
		return
	}

	transactions, err := store.Transactions(ctx)
	if err != nil {
		logger.Error("failed to list transactions", "error", err)
		os.Exit(1)
	}
	if *month != "" {
		transactions = filterMonth(transactions, *month)
	}
	if len(transactions) == 0 {
		logger.Info("nothing to export")
		return
	}

	httpClient, err := client.New(ctx, config.ClientSecretFile, sheets.Scope)
	if err != nil {
		logger.Error("failed to create http client", "error", err)
		os.Exit(1)
	}

	exporter, err := sheets.New(ctx, httpClient, sheets.Config{
		SheetTitle: cfg.Sheets.Title,
		SheetID:    cfg.Sheets.ID,
		SheetName:  cfg.Sheets.Name,
	}, logger.With("component", "export"))
	if err != nil {
		logger.Error("failed to initialize exporter", "error", err)
		os.Exit(1)
	}

	if err := exporter.Export(ctx, transactions); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("export complete",
		"count", len(transactions),
		"spreadsheet_id", exporter.SpreadsheetID(),
	)
}

func filterMonth(transactions []api.Transaction, month string) []api.Transaction {
	var out []api.Transaction
	for _, t := range transactions {
		if t.Date.MonthKey() == month {
			out = append(out, t)
		}
	}
	return out
}

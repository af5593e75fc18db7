// Package sheets exports transactions to a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tallyhq/tally/pkg/api"
)

// Scope is the OAuth scope the exporter needs.
const Scope = sheets.SpreadsheetsScope

// Config holds the exporter configuration.
type Config struct {
	// SheetTitle is the title for a new spreadsheet (if SheetID is empty).
	SheetTitle string
	// SheetID is the ID of an existing spreadsheet to use.
	SheetID string
	// SheetName is the name of the sheet within the spreadsheet.
	SheetName string
}

// Exporter appends transaction rows to a spreadsheet.
type Exporter struct {
	client      *sheets.Service
	spreadsheet *sheets.Spreadsheet
	sheetName   string
	logger      *slog.Logger
}

// New creates an exporter, reusing an existing spreadsheet when SheetID is
// set and creating one otherwise.
func New(ctx context.Context, httpClient *http.Client, cfg Config, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	e := &Exporter{
		client:    client,
		sheetName: cfg.SheetName,
		logger:    logger,
	}

	spreadsheet, err := e.initSpreadsheet(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing spreadsheet: %w", err)
	}
	e.spreadsheet = spreadsheet

	logger.Info("sheets exporter initialized", "spreadsheet_id", spreadsheet.SpreadsheetId)
	return e, nil
}

func (e *Exporter) initSpreadsheet(ctx context.Context, cfg Config) (*sheets.Spreadsheet, error) {
	if cfg.SheetID != "" {
		spreadsheet, err := e.client.Spreadsheets.Get(cfg.SheetID).Context(ctx).Do()
		if err == nil {
			e.logger.Info("using existing spreadsheet", "title", spreadsheet.Properties.Title, "id", cfg.SheetID)
			return spreadsheet, nil
		}
		e.logger.Warn("failed to get spreadsheet, will create new one", "id", cfg.SheetID, "error", err)
	}

	spreadsheet, err := e.client.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: cfg.SheetTitle,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating spreadsheet: %w", err)
	}

	e.logger.Info("created new spreadsheet", "title", cfg.SheetTitle, "id", spreadsheet.SpreadsheetId)

	if err := e.writeHeaders(ctx, spreadsheet.SpreadsheetId); err != nil {
		return nil, fmt.Errorf("writing headers: %w", err)
	}
	return spreadsheet, nil
}

func (e *Exporter) writeHeaders(ctx context.Context, spreadsheetID string) error {
	headerRange := fmt.Sprintf("%s!A1:H1", e.sheetName)
	headerReq := sheets.ValueRange{
		Values: [][]any{
			{"Date", "Type", "Description", "Amount", "Category", "Payment", "Recurring", "Notes"},
		},
	}

	_, err := e.client.Spreadsheets.Values.Update(spreadsheetID, headerRange, &headerReq).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("updating headers: %w", err)
	}
	return nil
}

// Export appends the transactions as rows, oldest first. Rate-limit
// responses are retried; other API errors surface immediately.
func (e *Exporter) Export(ctx context.Context, transactions []api.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	values := make([][]any, 0, len(transactions))
	for _, t := range transactions {
		values = append(values, []any{
			t.Date.String(),
			string(t.Type),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.Payment,
			t.Recurring,
			t.Notes,
		})
	}

	writeRange := fmt.Sprintf("%s!A2:H2", e.sheetName)
	writeReq := sheets.ValueRange{Values: values}

	err := retry.Do(
		func() error {
			_, err := e.client.Spreadsheets.Values.Append(e.spreadsheet.SpreadsheetId, writeRange, &writeReq).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				e.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(60*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("appending rows to sheet: %w", err)
	}

	e.logger.Info("exported transactions", "count", len(transactions))
	return nil
}

// SpreadsheetID returns the ID of the spreadsheet being written to.
func (e *Exporter) SpreadsheetID() string {
	if e.spreadsheet == nil {
		return ""
	}
	return e.spreadsheet.SpreadsheetId
}

// Package postgres is the PostgreSQL-backed implementation of api.Store.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyhq/tally/pkg/api"
)

//go:embed 001_create_tables.sql
var migrationSQL string

// Config holds the connection parameters.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Store implements api.Store on a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// New connects, pings (with retries, so the daemon survives a database that
// is still starting), and runs migrations.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		},
		retry.Attempts(5),
		retry.Delay(2*time.Second),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not reachable, retrying",
				"attempt", n+1,
				"error", err,
			)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	s := &Store{pool: pool, logger: logger}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	s.logger.Info("running database migrations")
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
}

// storeErr maps driver failures onto the store error so callers can match
// with errors.Is.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, api.ErrStoreUnavailable)
}

var transactionColumns = []string{
	"id", "type", "description", "amount", "category", "date",
	"payment", "notes", "recurring", "from_shopping", "created_at",
}

func (s *Store) Transactions(ctx context.Context) ([]api.Transaction, error) {
	sql, args, err := psql.Select(transactionColumns...).
		From("transactions").
		OrderBy("date", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("listing transactions", err)
	}
	defer rows.Close()

	var out []api.Transaction
	for rows.Next() {
		var (
			t    api.Transaction
			kind string
			date time.Time
		)
		if err := rows.Scan(&t.ID, &kind, &t.Description, &t.Amount, &t.Category,
			&date, &t.Payment, &t.Notes, &t.Recurring, &t.FromShopping, &t.CreatedAt); err != nil {
			return nil, storeErr("scanning transaction", err)
		}
		t.Type = api.TransactionType(kind)
		t.Date = api.DateOf(date)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing transactions", err)
	}
	return out, nil
}

func (s *Store) SaveTransaction(ctx context.Context, t api.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required: %w", api.ErrMalformedInput)
	}

	sql, args, err := psql.Insert("transactions").
		Columns(transactionColumns...).
		Values(t.ID, string(t.Type), t.Description, t.Amount, t.Category, t.Date.Time(),
			t.Payment, t.Notes, t.Recurring, t.FromShopping, t.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			date = EXCLUDED.date,
			payment = EXCLUDED.payment,
			notes = EXCLUDED.notes,
			recurring = EXCLUDED.recurring,
			from_shopping = EXCLUDED.from_shopping,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return storeErr("saving transaction", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "transactions", id)
}

func (s *Store) Tasks(ctx context.Context) ([]api.Task, error) {
	sql, args, err := psql.Select("id", "title", "priority", "category", "due_date", "completed", "created_at").
		From("tasks").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	defer rows.Close()

	var out []api.Task
	for rows.Next() {
		var (
			t        api.Task
			priority string
			due      *time.Time
		)
		if err := rows.Scan(&t.ID, &t.Title, &priority, &t.Category, &due, &t.Completed, &t.CreatedAt); err != nil {
			return nil, storeErr("scanning task", err)
		}
		t.Priority = api.Priority(priority)
		t.DueDate = due
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing tasks", err)
	}
	return out, nil
}

func (s *Store) SaveTask(ctx context.Context, t api.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", api.ErrMalformedInput)
	}

	sql, args, err := psql.Insert("tasks").
		Columns("id", "title", "priority", "category", "due_date", "completed", "created_at").
		Values(t.ID, t.Title, string(t.Priority), t.Category, t.DueDate, t.Completed, t.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			priority = EXCLUDED.priority,
			category = EXCLUDED.category,
			due_date = EXCLUDED.due_date,
			completed = EXCLUDED.completed,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return storeErr("saving task", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "tasks", id)
}

func (s *Store) ShoppingItems(ctx context.Context) ([]api.ShoppingItem, error) {
	sql, args, err := psql.Select("id", "item", "quantity", "price", "category", "purchased", "purchase_id", "created_at").
		From("shopping_items").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("listing shopping items", err)
	}
	defer rows.Close()

	var out []api.ShoppingItem
	for rows.Next() {
		var item api.ShoppingItem
		if err := rows.Scan(&item.ID, &item.Item, &item.Quantity, &item.Price,
			&item.Category, &item.Purchased, &item.PurchaseID, &item.CreatedAt); err != nil {
			return nil, storeErr("scanning shopping item", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing shopping items", err)
	}
	return out, nil
}

func (s *Store) SaveShoppingItem(ctx context.Context, item api.ShoppingItem) error {
	if item.ID == "" {
		return fmt.Errorf("shopping item id is required: %w", api.ErrMalformedInput)
	}

	sql, args, err := psql.Insert("shopping_items").
		Columns("id", "item", "quantity", "price", "category", "purchased", "purchase_id", "created_at").
		Values(item.ID, item.Item, item.Quantity, item.Price, item.Category,
			item.Purchased, item.PurchaseID, item.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			item = EXCLUDED.item,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			purchased = EXCLUDED.purchased,
			purchase_id = EXCLUDED.purchase_id,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return storeErr("saving shopping item", err)
	}
	return nil
}

func (s *Store) DeleteShoppingItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "shopping_items", id)
}

func (s *Store) Settings(ctx context.Context) (api.Settings, error) {
	sql, args, err := psql.Select("currency", "budget", "notifications", "voice", "auto_categorize", "theme").
		From("settings").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return api.Settings{}, fmt.Errorf("building query: %w", err)
	}

	var settings api.Settings
	err = s.pool.QueryRow(ctx, sql, args...).Scan(&settings.Currency, &settings.Budget,
		&settings.Notifications, &settings.Voice, &settings.AutoCategorize, &settings.Theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return api.DefaultSettings(), nil
	}
	if err != nil {
		return api.Settings{}, storeErr("reading settings", err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings api.Settings) error {
	if settings.Budget.IsNegative() {
		return fmt.Errorf("budget %s: %w", settings.Budget, api.ErrMalformedInput)
	}

	sql, args, err := psql.Insert("settings").
		Columns("id", "currency", "budget", "notifications", "voice", "auto_categorize", "theme").
		Values(1, settings.Currency, settings.Budget, settings.Notifications,
			settings.Voice, settings.AutoCategorize, settings.Theme).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			currency = EXCLUDED.currency,
			budget = EXCLUDED.budget,
			notifications = EXCLUDED.notifications,
			voice = EXCLUDED.voice,
			auto_categorize = EXCLUDED.auto_categorize,
			theme = EXCLUDED.theme,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return storeErr("saving settings", err)
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return storeErr("deleting from "+table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, api.ErrNotFound)
	}
	return nil
}

var _ api.Store = (*Store)(nil)

// Package postgres provides a PostgreSQL-backed settings store.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtkohut/spendwatch/pkg/api"
)

//go:embed 001_create_app_settings.sql
var migrationSQL string

// Config holds the PostgreSQL store configuration.
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

// Store persists per-app settings in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a PostgreSQL settings store and runs its migration.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
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
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migration: %w", err)
	}

	logger.Info("connected to PostgreSQL settings store",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// IsKnown reports whether the app was ever registered.
func (s *Store) IsKnown(ctx context.Context, appID string) (bool, error) {
	var known bool
	err := s.pool.QueryRow(ctx,
		`SELECT known FROM app_settings WHERE app_id = $1`, appID,
	).Scan(&known)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying app: %w", err)
	}
	return known, nil
}

// Register marks an app as known. Registering a known app is a no-op.
func (s *Store) Register(ctx context.Context, appID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_settings (app_id, known)
		VALUES ($1, TRUE)
		ON CONFLICT (app_id) DO UPDATE SET known = TRUE, updated_at = NOW()`,
		appID,
	)
	if err != nil {
		return fmt.Errorf("registering app: %w", err)
	}
	return nil
}

// IsUsed reports whether the user has configured the app.
func (s *Store) IsUsed(ctx context.Context, appID string) (bool, error) {
	var used bool
	err := s.pool.QueryRow(ctx,
		`SELECT used FROM app_settings WHERE app_id = $1`, appID,
	).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying app: %w", err)
	}
	return used, nil
}

// AppSettings returns the app's configuration, zero when unconfigured.
func (s *Store) AppSettings(ctx context.Context, appID string) (api.AppSettings, error) {
	var cfg api.AppSettings
	err := s.pool.QueryRow(ctx, `
		SELECT auto_add, expense_pattern, income_pattern, default_account_id
		FROM app_settings WHERE app_id = $1`, appID,
	).Scan(&cfg.AutoAdd, &cfg.ExpensePattern, &cfg.IncomePattern, &cfg.DefaultAccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return api.AppSettings{}, nil
	}
	if err != nil {
		return api.AppSettings{}, fmt.Errorf("querying app settings: %w", err)
	}
	return cfg, nil
}

// Configure stores an app's settings and marks it used.
func (s *Store) Configure(ctx context.Context, appID string, cfg api.AppSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_settings (app_id, known, used, auto_add, expense_pattern, income_pattern, default_account_id)
		VALUES ($1, TRUE, TRUE, $2, $3, $4, $5)
		ON CONFLICT (app_id) DO UPDATE SET
			known = TRUE,
			used = TRUE,
			auto_add = EXCLUDED.auto_add,
			expense_pattern = EXCLUDED.expense_pattern,
			income_pattern = EXCLUDED.income_pattern,
			default_account_id = EXCLUDED.default_account_id,
			updated_at = NOW()`,
		appID, cfg.AutoAdd, cfg.ExpensePattern, cfg.IncomePattern, cfg.DefaultAccountID,
	)
	if err != nil {
		return fmt.Errorf("configuring app: %w", err)
	}
	return nil
}

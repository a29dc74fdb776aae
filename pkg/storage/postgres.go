package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JaimeStill/market-board/pkg/lifecycle"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// postgres implements System over a single local_storage table.
type postgres struct {
	pool     *pgxpool.Pool
	dsn      string
	maxValue int64
	logger   *slog.Logger
}

// NewPostgres creates a PostgreSQL-backed store. The pool connects lazily;
// migrations run during lifecycle startup.
func NewPostgres(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &postgres{
		pool:     pool,
		dsn:      cfg.DSN,
		maxValue: cfg.MaxValueSizeBytes(),
		logger:   logger.With("system", "storage", "backend", BackendPostgres),
	}, nil
}

func (p *postgres) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting storage system")

	lc.OnStartup(func() {
		if err := p.pool.Ping(lc.Context()); err != nil {
			p.logger.Error("storage connection failed", "error", err)
			lc.Fail(fmt.Errorf("storage connection: %w", err))
			return
		}
		if err := p.migrate(); err != nil {
			p.logger.Error("storage migration failed", "error", err)
			lc.Fail(fmt.Errorf("storage migration: %w", err))
			return
		}
		p.logger.Info("storage schema ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.pool.Close()
		p.logger.Info("storage connection pool closed")
	})

	return nil
}

func (p *postgres) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	var value string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM local_storage WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query value: %w", err)
	}

	return value, nil
}

func (p *postgres) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkSize(value, p.maxValue); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (p *postgres) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx, `DELETE FROM local_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}

func (p *postgres) migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(p.dsn))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres:// URL to the pgx5:// scheme registered by
// the migrate pgx/v5 driver.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// Package postgres stores readings in a hosted PostgreSQL database through a
// pgx connection pool. It mirrors the MySQL storage method for method.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gas-monitor/internal/config"
	"gas-monitor/internal/storage"
)

type Storage struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func ConnString(cfg config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func New(ctx context.Context, cfg config.Config) (*Storage, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка разбора конфигурации пула: %w", op, err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour

	return Connect(ctx, poolConfig, cfg.Location())
}

func Connect(ctx context.Context, poolConfig *pgxpool.Config, loc *time.Location) (*Storage, error) {
	const op = "storage.postgres.Connect"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка создания пула соединений: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: не удалось подключиться к базе: %w", op, err)
	}

	if loc == nil {
		loc = time.UTC
	}

	return &Storage{pool: pool, loc: loc}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", storage.ErrReference, pgErr.Message)
		}
	}
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// ConnectTimeout bounds the retries of the initial connection.
const ConnectTimeout = 30 * time.Second

// Connect opens a pgx connection pool and pings it, retrying with
// exponential backoff until ConnectTimeout elapses or ctx is done.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = ConnectTimeout

	var pool *pgxpool.Pool
	err = backoff.RetryNotify(func() error {
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return fmt.Errorf("open pgx pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("ping postgres: %w", err)
		}
		pool = p
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		log.Warn("retrying postgres connection", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// OpenDB exposes the pool through database/sql for migrations and repositories.
func OpenDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

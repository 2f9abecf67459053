package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callvault/callvault/internal/config"
)

const (
	connectAttempts = 5
	connectDelay    = 5 * time.Second
)

// Connect acquires a connection pool to the index store and applies the
// schema. Connection attempts are retried up to connectAttempts times with a
// constant connectDelay between them; this is the only retry loop in the
// core, run-level retries belong to the orchestrator.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	attempt := func() error {
		p, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(connectDelay), connectAttempts-1),
		ctx,
	)
	onRetry := func(err error, wait time.Duration) {
		log.Warn("Database connection failed, retrying", "error", err, "retry_in", wait)
	}
	if err := backoff.RetryNotify(attempt, policy, onRetry); err != nil {
		return nil, fmt.Errorf("could not connect to the database after %d attempts: %w", connectAttempts, err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info("Database connection established", "host", cfg.Host, "database", cfg.Name)
	return pool, nil
}

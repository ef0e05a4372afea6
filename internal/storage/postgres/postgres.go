// Package postgres persists catalog snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/artifactsbot/internal/config"
)

// connectWait bounds how long NewPool keeps retrying an unreachable server.
const connectWait = 30 * time.Second

// Pool is the bot's handle on the snapshot database. It exists only when
// database.enabled is set.
type Pool struct {
	db *pgxpool.Pool
}

// NewPool opens a pool from cfg and waits for the server to answer a ping,
// retrying with exponential backoff for up to connectWait.
//
// Precondition: cfg must pass DatabaseConfig validation.
// Postcondition: Returns a pool that has answered at least one ping, or an error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "artifactsbot"

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectWait
	ping := func() error { return db.Ping(ctx) }
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{db: db}, nil
}

// Health pings the server, failing if it does not answer within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("database health: %w", err)
	}
	return nil
}

// Close releases every connection. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.db.Close()
}

// DB exposes the pgx pool to repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}

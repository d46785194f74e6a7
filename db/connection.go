// Package db manages the PostgreSQL connection and read-only query access.
//
// Design decisions:
//   - database/sql over the pgx stdlib driver: pooling comes from
//     database/sql, and the layer stays mockable with sqlmock in tests.
//   - All queries go through the *sql.DB pool, keeping the rest of the
//     application unaware of connection details.
//   - SSH tunnel integration is handled transparently: if SSH is enabled,
//     we first establish the tunnel, then connect to the local endpoint.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/ssh"
)

// DB wraps the sql connection pool and an optional SSH tunnel.
type DB struct {
	pool   *sql.DB
	tunnel *ssh.Tunnel

	queryTimeout time.Duration
	maxRows      int
}

// Connect establishes a PostgreSQL connection, optionally through an SSH tunnel.
func Connect(ctx context.Context, cfg config.Config) (*DB, error) {
	d := &DB{
		queryTimeout: cfg.DB.QueryTimeout,
		maxRows:      cfg.DB.MaxRows,
	}

	dbCfg := cfg.DB
	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, dbCfg.Host, dbCfg.Port)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		d.tunnel = tunnel

		// Override connection target with local tunnel endpoint
		dbCfg.URL = ""
		dbCfg.Host = localAddr.Host
		dbCfg.Port = localAddr.Port
	}

	pool, err := sql.Open("pgx", dbCfg.DSN())
	if err != nil {
		d.stopTunnel()
		return nil, fmt.Errorf("pgx open: %w", err)
	}

	// Verify the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		d.stopTunnel()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}

	d.pool = pool
	return d, nil
}

// NewWithPool wraps an existing pool. Used by tests (sqlmock).
func NewWithPool(pool *sql.DB, queryTimeout time.Duration, maxRows int) *DB {
	return &DB{pool: pool, queryTimeout: queryTimeout, maxRows: maxRows}
}

// Close shuts down the pool and SSH tunnel.
func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	d.stopTunnel()
}

func (d *DB) stopTunnel() {
	if d.tunnel != nil {
		d.tunnel.Stop()
	}
}

// queryCtx applies the configured statement timeout.
func (d *DB) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.queryTimeout)
}

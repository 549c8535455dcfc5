package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

const (
	defaultTimeout = 10 * time.Second

	maxOpenConns = 25
	maxIdleConns = 5
)

// Connect opens a pooled Postgres connection, verifies it with a ping
// and wraps it in a bun.DB. A default timeout is applied when none is
// provided.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*bun.DB, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

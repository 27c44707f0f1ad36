package db

import (
	"context"
	"database/sql"
)

// DBTX is what a repository needs from its connection. Services hand
// repositories the *sql.Tx of the current unit of work; read-only tests hand
// them the pool directly.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

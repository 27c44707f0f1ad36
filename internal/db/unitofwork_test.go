package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

const insertSnapshot = `INSERT INTO catalog_snapshots (id, source, checksum, synced_at, created_at)
	VALUES (?, 'TEST', 'sum', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`

func snapshotExists(t *testing.T, uow *db.SQLiteUnitOfWork, id string) bool {
	t.Helper()
	var n int
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_snapshots WHERE id = ?`, id).Scan(&n)
	})
	require.NoError(t, err)
	return n == 1
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertSnapshot, "snap-1")
		return err
	})
	require.NoError(t, err)
	assert.True(t, snapshotExists(t, uow, "snap-1"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)
	boom := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertSnapshot, "snap-2"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, snapshotExists(t, uow, "snap-2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertSnapshot, "snap-3")
			panic("boom")
		})
	})
	assert.False(t, snapshotExists(t, uow, "snap-3"), "row should not exist after panic rollback")
}

func TestWithinTx_ForeignKeysEnforcedInTx(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO terms (id, snapshot_id, campus, code, year, season)
			VALUES ('t1', 'no-such-snapshot', 'NB', '2025FA', 2025, 'FALL')`)
		return err
	})
	require.Error(t, err)
}

func TestWithinTx_CanceledContextDoesNotCommit(t *testing.T) {
	uow := openTestUoW(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertSnapshot, "snap-4"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, snapshotExists(t, uow, "snap-4"))
}

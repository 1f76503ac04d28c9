package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "schema.db") + "?_pragma=foreign_keys(1)"

	dbh, err := Open(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer dbh.Close()

	require.NoError(t, EnsureSchema(ctx, dbh, DriverSQLite))

	var n int
	err = dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('questions','templates','interviews','scores','evaluations','event_log')`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestOpen_SQLiteRejectsNonPositiveWeight(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "check.db")

	dbh, err := Open(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer dbh.Close()

	_, err = dbh.ExecContext(ctx, `INSERT INTO questions (id, text, weight, created_at) VALUES ('q', 'x', 0, 0)`)
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("mysql"), "")
	assert.Error(t, err)
}

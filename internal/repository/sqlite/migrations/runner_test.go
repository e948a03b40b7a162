package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/msomdec/store-rating/internal/repository/sqlite/migrations"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	return db
}

func TestRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, migrations.Run(ctx, db))

	_, err := db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, address, role) VALUES (?, ?, ?, ?, ?)",
		"Migration Test User Name", "m@example.com", "hash", "Somewhere 1", "NORMAL_USER",
	)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, migrations.Run(ctx, db))
	require.NoError(t, migrations.Run(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestRun_RatingConstraints(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, migrations.Run(ctx, db))

	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (1, 'Owner', 'o@example.com', 'h')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		"INSERT INTO stores (id, name, email, owner_id) VALUES (1, 'Store', 's@example.com', 1)")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "INSERT INTO ratings (user_id, store_id, rating) VALUES (1, 1, 6)")
	assert.Error(t, err, "rating above 5 must be rejected")

	_, err = db.ExecContext(ctx, "INSERT INTO ratings (user_id, store_id, rating) VALUES (1, 1, 3)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO ratings (user_id, store_id, rating) VALUES (1, 1, 4)")
	assert.Error(t, err, "second row for the same pair must be rejected")

	_, err = db.ExecContext(ctx,
		"INSERT INTO stores (name, email, owner_id) VALUES ('Orphan', 'x@example.com', 42)")
	assert.Error(t, err, "store owner must reference an existing user")
}

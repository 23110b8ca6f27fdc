package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-tenant-auth/config"
	"github.com/goliatone/go-tenant-auth/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/dialect"
)

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()

	db, err := database.OpenAndMigrate(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    memoryDSN(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"companies", "users", "platform_admins", "sequences", "customers", "products"} {
		var count int
		err := db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(ctx, &count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}

	var fk int
	require.NoError(t, db.NewRaw("PRAGMA foreign_keys").Scan(ctx, &fk))
	assert.Equal(t, 1, fk)

	require.NoError(t, database.Migrate(ctx, db), "migrating twice is a no-op")
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	db, err := database.Open(context.Background(), config.DatabaseConfig{DSN: memoryDSN()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, dialect.SQLite, db.Dialect().Name())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown database driver "oracle"`)
}

package repositories

import (
	"context"
	"logistics-route-service/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "logistics.db")

	store, err := OpenStore(ctx, config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	assert.ErrorIs(t, store.CheckSchema(ctx), ErrSchemaNotInitialized)

	applied, err := store.Migrate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, applied)
	assert.NoError(t, store.CheckSchema(ctx))

	assert.NoError(t, store.Routes.Ping(ctx))
	assert.FileExists(t, path)

	routes, err := store.Routes.ListRoutesByDate(ctx, testDate)
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

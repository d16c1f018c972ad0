package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"logistics-route-service/internal/adapters/repositories"
	"logistics-route-service/internal/cli"
	"logistics-route-service/internal/config"
	"logistics-route-service/internal/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logistics.db")
	t.Setenv("LOGISTICS_DATABASE_DRIVER", "sqlite")
	t.Setenv("LOGISTICS_DATABASE_PATH", path)
	chdir(t, t.TempDir())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func seedRoute(t *testing.T, path string, date time.Time) *domain.Route {
	t.Helper()
	ctx := context.Background()
	store, err := repositories.OpenStore(ctx, config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer store.Close()

	route := &domain.Route{
		ID:           uuid.New(),
		DeliveryDate: date,
		Status:       domain.RouteStatusPlanned,
		CreatedAt:    time.Date(2025, 3, 13, 17, 0, 0, 0, time.UTC),
	}
	route.Stops = []*domain.Stop{{
		ID:        uuid.New(),
		RouteID:   route.ID,
		Status:    domain.StopStatusPending,
		Order:     1,
		CreatedAt: route.CreatedAt,
		OrderIDs:  []uuid.UUID{uuid.New(), uuid.New()},
	}}
	require.NoError(t, store.Routes.CreateRoute(ctx, route))
	return route
}

func TestMigrateCommand(t *testing.T) {
	setupStore(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied sqlite schema")
}

func TestRoutesListCommand(t *testing.T) {
	path := setupStore(t)
	_, err := run(t, "migrate")
	require.NoError(t, err)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	route := seedRoute(t, path, date)

	out, err := run(t, "routes", "list", "--date", "2025-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, route.ID.String())
	assert.Contains(t, out, "PLANNED")

	out, err = run(t, "routes", "list", "--date", "2025-03-14", "--json")
	require.NoError(t, err)
	var body []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body, 1)
	assert.Equal(t, route.ID.String(), body[0]["id"])

	out, err = run(t, "routes", "list", "--date", "2025-03-15")
	require.NoError(t, err)
	assert.Contains(t, out, "no routes")
}

func TestRoutesListCommand_RequiresDate(t *testing.T) {
	setupStore(t)

	_, err := run(t, "routes", "list")
	assert.Error(t, err)

	_, err = run(t, "routes", "list", "--date", "tomorrow")
	assert.Error(t, err)
}

func TestRoutesShowAndCancel(t *testing.T) {
	path := setupStore(t)
	_, err := run(t, "migrate")
	require.NoError(t, err)
	route := seedRoute(t, path, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	out, err := run(t, "routes", "show", route.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "PLANNED"`)

	out, err = run(t, "routes", "cancel", route.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = run(t, "routes", "show", route.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "CANCELLED"`)

	_, err = run(t, "routes", "cancel", uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)

	_, err = run(t, "routes", "show", "nope")
	assert.Error(t, err)
}

func TestRoutesCommands_RequireMigratedStore(t *testing.T) {
	setupStore(t)

	for _, args := range [][]string{
		{"routes", "list", "--date", "2025-03-14"},
		{"routes", "show", uuid.NewString()},
		{"routes", "cancel", uuid.NewString()},
	} {
		_, err := run(t, args...)
		require.Error(t, err, args)
		assert.ErrorIs(t, err, repositories.ErrSchemaNotInitialized, args)
		assert.Contains(t, err.Error(), "dbtool migrate")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

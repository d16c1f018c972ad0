package repositories

import (
	"context"
	"errors"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/ports"
	"logistics-route-service/internal/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2025, 3, 13, 18, 30, 0, 0, time.UTC)
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func sampleRoute(date time.Time, createdAt time.Time) *domain.Route {
	route := &domain.Route{
		ID:           uuid.New(),
		DeliveryDate: date,
		Status:       domain.RouteStatusPlanned,
		CreatedAt:    createdAt,
	}
	route.Stops = []*domain.Stop{
		{
			ID:         uuid.New(),
			RouteID:    route.ID,
			CustomerID: int64Ptr(7),
			Address:    strPtr("Calle 1"),
			City:       strPtr("Bogota"),
			Status:     domain.StopStatusPending,
			Order:      1,
			CreatedAt:  createdAt,
			OrderIDs:   []uuid.UUID{uuid.New(), uuid.New()},
		},
		{
			ID:        uuid.New(),
			RouteID:   route.ID,
			Status:    domain.StopStatusPending,
			Order:     2,
			CreatedAt: createdAt,
			OrderIDs:  []uuid.UUID{uuid.New()},
		},
	}
	return route
}

func runRouteRepositoryContract(t *testing.T, repo ports.RouteRepository, reset func(t *testing.T)) {
	ctx := context.Background()

	t.Run("CreateRoute then GetRoute returns the full aggregate", func(t *testing.T) {
		reset(t)
		route := sampleRoute(testDate, testNow)
		require.NoError(t, repo.CreateRoute(ctx, route))

		got, err := repo.GetRoute(ctx, route.ID)
		require.NoError(t, err)

		assert.Equal(t, route.ID, got.ID)
		assert.True(t, testDate.Equal(got.DeliveryDate))
		assert.Equal(t, domain.RouteStatusPlanned, got.Status)
		assert.True(t, testNow.Equal(got.CreatedAt))
		require.Len(t, got.Stops, 2)

		first := got.Stops[0]
		assert.Equal(t, 1, first.Order)
		assert.Equal(t, route.Stops[0].ID, first.ID)
		assert.Equal(t, route.ID, first.RouteID)
		require.NotNil(t, first.CustomerID)
		assert.EqualValues(t, 7, *first.CustomerID)
		assert.Equal(t, "Calle 1", *first.Address)
		assert.Equal(t, "Bogota", *first.City)
		assert.ElementsMatch(t, route.Stops[0].OrderIDs, first.OrderIDs)

		second := got.Stops[1]
		assert.Equal(t, 2, second.Order)
		assert.Nil(t, second.CustomerID)
		assert.Nil(t, second.Address)
		assert.Nil(t, second.City)
		assert.ElementsMatch(t, route.Stops[1].OrderIDs, second.OrderIDs)

		assert.Equal(t, 3, got.OrderCount())
	})

	t.Run("GetRoute unknown id", func(t *testing.T) {
		reset(t)
		_, err := repo.GetRoute(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrRouteNotFound)
	})

	t.Run("FindActiveRouteByDate ignores cancelled routes", func(t *testing.T) {
		reset(t)

		got, err := repo.FindActiveRouteByDate(ctx, testDate)
		require.NoError(t, err)
		assert.Nil(t, got)

		cancelled := sampleRoute(testDate, testNow)
		require.NoError(t, repo.CreateRoute(ctx, cancelled))
		require.NoError(t, repo.UpdateRouteStatus(ctx, cancelled.ID, domain.RouteStatusCancelled))

		got, err = repo.FindActiveRouteByDate(ctx, testDate)
		require.NoError(t, err)
		assert.Nil(t, got)

		active := sampleRoute(testDate, testNow.Add(time.Minute))
		require.NoError(t, repo.CreateRoute(ctx, active))

		got, err = repo.FindActiveRouteByDate(ctx, testDate)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, active.ID, got.ID)
		assert.Len(t, got.Stops, 2)

		got, err = repo.FindActiveRouteByDate(ctx, testDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListRoutesByDate returns every route of the date with stops", func(t *testing.T) {
		reset(t)
		a := sampleRoute(testDate, testNow)
		b := sampleRoute(testDate, testNow.Add(time.Hour))
		other := sampleRoute(testDate.AddDate(0, 0, 1), testNow)
		for _, r := range []*domain.Route{b, a, other} {
			require.NoError(t, repo.CreateRoute(ctx, r))
		}

		routes, err := repo.ListRoutesByDate(ctx, testDate)
		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.Equal(t, a.ID, routes[0].ID)
		assert.Equal(t, b.ID, routes[1].ID)
		for _, r := range routes {
			require.Len(t, r.Stops, 2)
			assert.Equal(t, 1, r.Stops[0].Order)
			assert.Equal(t, 2, r.Stops[1].Order)
		}

		empty, err := repo.ListRoutesByDate(ctx, testDate.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("GetStop and UpdateStopStatus", func(t *testing.T) {
		reset(t)
		route := sampleRoute(testDate, testNow)
		require.NoError(t, repo.CreateRoute(ctx, route))

		stopID := route.Stops[0].ID
		require.NoError(t, repo.UpdateStopStatus(ctx, stopID, domain.StopStatusDelivered))

		stop, err := repo.GetStop(ctx, stopID)
		require.NoError(t, err)
		assert.Equal(t, domain.StopStatusDelivered, stop.Status)
		assert.Equal(t, route.ID, stop.RouteID)
		assert.Len(t, stop.OrderIDs, 2)

		_, err = repo.GetStop(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrStopNotFound)

		err = repo.UpdateStopStatus(ctx, uuid.New(), domain.StopStatusFailed)
		assert.ErrorIs(t, err, domain.ErrStopNotFound)

		err = repo.UpdateRouteStatus(ctx, uuid.New(), domain.RouteStatusCompleted)
		assert.ErrorIs(t, err, domain.ErrRouteNotFound)
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		reset(t)
		route := sampleRoute(testDate, testNow)
		boom := errors.New("boom")

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.CreateRoute(txCtx, route); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.GetRoute(ctx, route.ID)
		assert.ErrorIs(t, err, domain.ErrRouteNotFound)
	})

	t.Run("WithTx commits status changes together", func(t *testing.T) {
		reset(t)
		route := sampleRoute(testDate, testNow)
		require.NoError(t, repo.CreateRoute(ctx, route))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			loaded, err := repo.GetRoute(txCtx, route.ID)
			if err != nil {
				return err
			}
			if err := repo.UpdateStopStatus(txCtx, loaded.Stops[1].ID, domain.StopStatusFailed); err != nil {
				return err
			}
			return repo.UpdateRouteStatus(txCtx, loaded.ID, domain.RouteStatusInProgress)
		})
		require.NoError(t, err)

		got, err := repo.GetRoute(ctx, route.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RouteStatusInProgress, got.Status)
		assert.Equal(t, domain.StopStatusFailed, got.Stops[1].Status)
	})

	t.Run("CreateRoute with a duplicate id", func(t *testing.T) {
		reset(t)
		route := sampleRoute(testDate, testNow)
		require.NoError(t, repo.CreateRoute(ctx, route))

		dup := sampleRoute(testDate, testNow)
		dup.ID = route.ID
		for _, s := range dup.Stops {
			s.RouteID = route.ID
		}
		err := repo.CreateRoute(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrRouteAlreadyExists)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestSqliteRouteRepository(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, InitSchema(db))
	repo := NewSqliteRouteRepository(db)

	runRouteRepositoryContract(t, repo, func(t *testing.T) {
		t.Helper()
		_, err := db.Exec(`DELETE FROM delivery_routes;`)
		require.NoError(t, err)
	})
}

func TestSqliteInitSchema_Idempotent(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db))
	assert.Error(t, InitSchema(nil))
}

func TestSqliteCascadeDeletesStopsAndLinks(t *testing.T) {
	db := testutil.NewSQLite(t)
	require.NoError(t, InitSchema(db))
	repo := NewSqliteRouteRepository(db)
	ctx := context.Background()

	route := sampleRoute(testDate, testNow)
	require.NoError(t, repo.CreateRoute(ctx, route))

	_, err := db.Exec(`DELETE FROM delivery_routes WHERE id = ?;`, route.ID.String())
	require.NoError(t, err)

	var stops, links int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM route_stops;`).Scan(&stops))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM stop_orders;`).Scan(&links))
	assert.Zero(t, stops)
	assert.Zero(t, links)
}

func TestPostgresRouteRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	repo := NewPostgresRouteRepository(pool)

	runRouteRepositoryContract(t, repo, func(t *testing.T) {
		t.Helper()
		testutil.TruncateAll(t, ctx, pool)
	})
}

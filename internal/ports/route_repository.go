package ports

import (
	"context"
	"logistics-route-service/internal/domain"
	"time"

	"github.com/google/uuid"
)

// Port: persistence for routes, their stops and order links.
// Read methods return fully populated aggregates (stops ordered, order ids
// attached); nothing is loaded lazily.
type RouteRepository interface {
	// Run fn in a single transaction. Nested calls join the outer one.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Return any non-cancelled route for the date, or nil.
	FindActiveRouteByDate(ctx context.Context, date time.Time) (*domain.Route, error)
	// Insert the route, its stops and their order links.
	CreateRoute(ctx context.Context, route *domain.Route) error

	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	ListRoutesByDate(ctx context.Context, date time.Time) ([]*domain.Route, error)
	GetStop(ctx context.Context, id uuid.UUID) (*domain.Stop, error)

	UpdateStopStatus(ctx context.Context, id uuid.UUID, status domain.StopStatus) error
	UpdateRouteStatus(ctx context.Context, id uuid.UUID, status domain.RouteStatus) error

	Ping(ctx context.Context) error
}

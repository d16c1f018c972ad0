package repositories

import (
	"context"
	"errors"
	"fmt"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRouteRepository(pool *pgxpool.Pool) *PostgresRouteRepository {
	return &PostgresRouteRepository{pool: pool}
}

func (r *PostgresRouteRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withPgTx(ctx, r.pool, fn)
}

func (r *PostgresRouteRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRouteRepository) FindActiveRouteByDate(ctx context.Context, date time.Time) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.pg.FindActiveRouteByDate")(&err)

	const query = `
SELECT id
FROM delivery_routes
WHERE delivery_date = $1 AND status <> $2
ORDER BY created_at
LIMIT 1`

	var id uuid.UUID
	err = r.queryRow(ctx, query, date.Format(dateLayout), domain.RouteStatusCancelled).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active route: %w", err)
	}
	return r.GetRoute(ctx, id)
}

func (r *PostgresRouteRepository) CreateRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "repo.pg.CreateRoute")(&err)

	return r.WithTx(ctx, func(ctx context.Context) error {
		const insertRoute = `
INSERT INTO delivery_routes (id, delivery_date, status, created_at)
VALUES ($1, $2, $3, $4)`
		const insertStop = `
INSERT INTO route_stops (id, route_id, customer_id, address, city, status, stop_order, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		const insertLink = `
INSERT INTO stop_orders (stop_id, order_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

		if _, err := r.exec(ctx, insertRoute,
			route.ID.String(), route.DeliveryDate.Format(dateLayout), route.Status, route.CreatedAt,
		); err != nil {
			if isPgUniqueViolation(err) {
				return fmt.Errorf("create route id=%s: %w", route.ID, domain.ErrRouteAlreadyExists)
			}
			return fmt.Errorf("create route: %w", err)
		}

		for _, s := range route.Stops {
			if _, err := r.exec(ctx, insertStop,
				s.ID.String(), route.ID.String(), s.CustomerID, s.Address, s.City, s.Status, s.Order, s.CreatedAt,
			); err != nil {
				return fmt.Errorf("create stop order=%d: %w", s.Order, err)
			}
			for _, orderID := range s.OrderIDs {
				if _, err := r.exec(ctx, insertLink, s.ID.String(), orderID.String()); err != nil {
					return fmt.Errorf("link order_id=%s: %w", orderID, err)
				}
			}
		}
		return nil
	})
}

// GetRoute loads the route with its stops and order links. Inside a
// transaction the route row is locked until commit.
func (r *PostgresRouteRepository) GetRoute(ctx context.Context, id uuid.UUID) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.pg.GetRoute")(&err)

	query := `
SELECT id, delivery_date, status, created_at
FROM delivery_routes
WHERE id = $1`
	if pgTxFromContext(ctx) != nil {
		query += "\nFOR UPDATE"
	}

	route, err := scanPgRoute(r.queryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, fmt.Errorf("get route: %w", err)
	}

	if err := r.loadStops(ctx, []*domain.Route{route}); err != nil {
		return nil, err
	}
	return route, nil
}

func (r *PostgresRouteRepository) ListRoutesByDate(ctx context.Context, date time.Time) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "repo.pg.ListRoutesByDate")(&err)

	const query = `
SELECT id, delivery_date, status, created_at
FROM delivery_routes
WHERE delivery_date = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0)
	for rows.Next() {
		route, err := scanPgRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}
	rows.Close()

	if err := r.loadStops(ctx, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *PostgresRouteRepository) GetStop(ctx context.Context, id uuid.UUID) (_ *domain.Stop, err error) {
	defer obs.Time(ctx, "repo.pg.GetStop")(&err)

	const query = `
SELECT id, route_id, customer_id, address, city, status, stop_order, created_at
FROM route_stops
WHERE id = $1`

	stop, err := scanPgStop(r.queryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStopNotFound
		}
		return nil, fmt.Errorf("get stop: %w", err)
	}

	links, err := r.loadLinks(ctx, []string{stop.ID.String()})
	if err != nil {
		return nil, err
	}
	attachStops(nil, []*domain.Stop{stop}, links)
	return stop, nil
}

func (r *PostgresRouteRepository) UpdateStopStatus(ctx context.Context, id uuid.UUID, status domain.StopStatus) error {
	tag, err := r.exec(ctx, `UPDATE route_stops SET status = $2 WHERE id = $1`, id.String(), status)
	if err != nil {
		return fmt.Errorf("update stop status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStopNotFound
	}
	return nil
}

func (r *PostgresRouteRepository) UpdateRouteStatus(ctx context.Context, id uuid.UUID, status domain.RouteStatus) error {
	tag, err := r.exec(ctx, `UPDATE delivery_routes SET status = $2 WHERE id = $1`, id.String(), status)
	if err != nil {
		return fmt.Errorf("update route status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (r *PostgresRouteRepository) loadStops(ctx context.Context, routes []*domain.Route) error {
	if len(routes) == 0 {
		return nil
	}

	const query = `
SELECT id, route_id, customer_id, address, city, status, stop_order, created_at
FROM route_stops
WHERE route_id = ANY($1::uuid[])
ORDER BY route_id, stop_order`

	rows, err := r.query(ctx, query, routeIDs(routes))
	if err != nil {
		return fmt.Errorf("load stops: %w", err)
	}
	defer rows.Close()

	stops := make([]*domain.Stop, 0)
	for rows.Next() {
		s, err := scanPgStop(rows)
		if err != nil {
			return fmt.Errorf("load stops: scan row: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load stops: row iteration: %w", err)
	}
	rows.Close()

	var links []domain.OrderLink
	if len(stops) > 0 {
		links, err = r.loadLinks(ctx, stopIDs(stops))
		if err != nil {
			return err
		}
	}

	attachStops(routes, stops, links)
	return nil
}

func (r *PostgresRouteRepository) loadLinks(ctx context.Context, ids []string) ([]domain.OrderLink, error) {
	const query = `
SELECT stop_id, order_id
FROM stop_orders
WHERE stop_id = ANY($1::uuid[])
ORDER BY stop_id, order_id`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("load order links: %w", err)
	}
	defer rows.Close()

	links := make([]domain.OrderLink, 0, len(ids))
	for rows.Next() {
		var l domain.OrderLink
		if err := rows.Scan(&l.StopID, &l.OrderID); err != nil {
			return nil, fmt.Errorf("load order links: scan row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load order links: row iteration: %w", err)
	}
	return links, nil
}

func scanPgRoute(row pgx.Row) (*domain.Route, error) {
	var route domain.Route
	var status string
	if err := row.Scan(&route.ID, &route.DeliveryDate, &status, &route.CreatedAt); err != nil {
		return nil, err
	}
	route.Status = domain.RouteStatus(status)
	route.CreatedAt = route.CreatedAt.UTC()
	return &route, nil
}

func scanPgStop(row pgx.Row) (*domain.Stop, error) {
	var s domain.Stop
	var status string
	if err := row.Scan(&s.ID, &s.RouteID, &s.CustomerID, &s.Address, &s.City, &status, &s.Order, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Status = domain.StopStatus(status)
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

func (r *PostgresRouteRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := pgTxFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *PostgresRouteRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := pgTxFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *PostgresRouteRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := pgTxFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLite-backed implementation of the RouteRepository port.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

func (s *SqliteRouteRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}
	return withSqliteTx(ctx, s.DB, fn)
}

func (s *SqliteRouteRepository) Ping(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}
	return s.DB.PingContext(ctx)
}

func (s *SqliteRouteRepository) FindActiveRouteByDate(ctx context.Context, date time.Time) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.sqlite.FindActiveRouteByDate")(&err)

	query := `
	SELECT id
	FROM delivery_routes
	WHERE delivery_date = ? AND status <> ?
	ORDER BY created_at
	LIMIT 1;
	`

	var id uuid.UUID
	err = s.queryRow(ctx, query, date.Format(dateLayout), string(domain.RouteStatusCancelled)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active route: %w", err)
	}
	return s.GetRoute(ctx, id)
}

func (s *SqliteRouteRepository) CreateRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "repo.sqlite.CreateRoute")(&err)

	return s.WithTx(ctx, func(ctx context.Context) error {
		insertRoute := `
		INSERT INTO delivery_routes (id, delivery_date, status, created_at)
		VALUES (?, ?, ?, ?);
		`
		insertStop := `
		INSERT INTO route_stops (id, route_id, customer_id, address, city, status, stop_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
		`
		insertLink := `
		INSERT OR IGNORE INTO stop_orders (stop_id, order_id)
		VALUES (?, ?);
		`

		if _, err := s.exec(ctx, insertRoute,
			route.ID.String(),
			route.DeliveryDate.Format(dateLayout),
			string(route.Status),
			formatTimestamp(route.CreatedAt),
		); err != nil {
			if isSqliteConstraint(err) {
				return fmt.Errorf("create route id=%s: %w", route.ID, domain.ErrRouteAlreadyExists)
			}
			return fmt.Errorf("create route: %w", err)
		}

		for _, st := range route.Stops {
			if _, err := s.exec(ctx, insertStop,
				st.ID.String(),
				route.ID.String(),
				st.CustomerID,
				st.Address,
				st.City,
				string(st.Status),
				st.Order,
				formatTimestamp(st.CreatedAt),
			); err != nil {
				return fmt.Errorf("create stop order=%d: %w", st.Order, err)
			}
			for _, orderID := range st.OrderIDs {
				if _, err := s.exec(ctx, insertLink, st.ID.String(), orderID.String()); err != nil {
					return fmt.Errorf("link order_id=%s: %w", orderID, err)
				}
			}
		}
		return nil
	})
}

func (s *SqliteRouteRepository) GetRoute(ctx context.Context, id uuid.UUID) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.sqlite.GetRoute")(&err)

	query := `
	SELECT id, delivery_date, status, created_at
	FROM delivery_routes
	WHERE id = ?;
	`

	route, err := scanSqliteRoute(s.queryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, fmt.Errorf("get route: %w", err)
	}

	if err := s.loadStops(ctx, []*domain.Route{route}); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *SqliteRouteRepository) ListRoutesByDate(ctx context.Context, date time.Time) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "repo.sqlite.ListRoutesByDate")(&err)

	query := `
	SELECT id, delivery_date, status, created_at
	FROM delivery_routes
	WHERE delivery_date = ?
	ORDER BY created_at, id;
	`

	rows, err := s.query(ctx, query, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0)
	for rows.Next() {
		route, err := scanSqliteRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}
	rows.Close()

	if err := s.loadStops(ctx, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *SqliteRouteRepository) GetStop(ctx context.Context, id uuid.UUID) (_ *domain.Stop, err error) {
	defer obs.Time(ctx, "repo.sqlite.GetStop")(&err)

	query := `
	SELECT id, route_id, customer_id, address, city, status, stop_order, created_at
	FROM route_stops
	WHERE id = ?;
	`

	stop, err := scanSqliteStop(s.queryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStopNotFound
		}
		return nil, fmt.Errorf("get stop: %w", err)
	}

	links, err := s.loadLinks(ctx, []string{stop.ID.String()})
	if err != nil {
		return nil, err
	}
	attachStops(nil, []*domain.Stop{stop}, links)
	return stop, nil
}

func (s *SqliteRouteRepository) UpdateStopStatus(ctx context.Context, id uuid.UUID, status domain.StopStatus) error {
	res, err := s.exec(ctx, `UPDATE route_stops SET status = ? WHERE id = ?;`, string(status), id.String())
	if err != nil {
		return fmt.Errorf("update stop status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrStopNotFound
	}
	return nil
}

func (s *SqliteRouteRepository) UpdateRouteStatus(ctx context.Context, id uuid.UUID, status domain.RouteStatus) error {
	res, err := s.exec(ctx, `UPDATE delivery_routes SET status = ? WHERE id = ?;`, string(status), id.String())
	if err != nil {
		return fmt.Errorf("update route status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (s *SqliteRouteRepository) loadStops(ctx context.Context, routes []*domain.Route) error {
	if len(routes) == 0 {
		return nil
	}

	ids := routeIDs(routes)
	query := fmt.Sprintf(`
	SELECT id, route_id, customer_id, address, city, status, stop_order, created_at
	FROM route_stops
	WHERE route_id IN (%s)
	ORDER BY route_id, stop_order;
	`, placeholders(len(ids)))

	rows, err := s.query(ctx, query, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load stops: %w", err)
	}
	defer rows.Close()

	stops := make([]*domain.Stop, 0)
	for rows.Next() {
		st, err := scanSqliteStop(rows)
		if err != nil {
			return fmt.Errorf("load stops: scan row: %w", err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load stops: row iteration: %w", err)
	}
	rows.Close()

	var links []domain.OrderLink
	if len(stops) > 0 {
		links, err = s.loadLinks(ctx, stopIDs(stops))
		if err != nil {
			return err
		}
	}

	attachStops(routes, stops, links)
	return nil
}

func (s *SqliteRouteRepository) loadLinks(ctx context.Context, ids []string) ([]domain.OrderLink, error) {
	query := fmt.Sprintf(`
	SELECT stop_id, order_id
	FROM stop_orders
	WHERE stop_id IN (%s)
	ORDER BY stop_id, order_id;
	`, placeholders(len(ids)))

	rows, err := s.query(ctx, query, toArgs(ids)...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSqliteRoute(row rowScanner) (*domain.Route, error) {
	var route domain.Route
	var date, status, createdAt string
	if err := row.Scan(&route.ID, &date, &status, &createdAt); err != nil {
		return nil, err
	}

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse delivery_date %q: %w", date, err)
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}

	route.DeliveryDate = d
	route.Status = domain.RouteStatus(status)
	route.CreatedAt = ts
	return &route, nil
}

func scanSqliteStop(row rowScanner) (*domain.Stop, error) {
	var st domain.Stop
	var status, createdAt string
	if err := row.Scan(&st.ID, &st.RouteID, &st.CustomerID, &st.Address, &st.City, &status, &st.Order, &createdAt); err != nil {
		return nil, err
	}

	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}

	st.Status = domain.StopStatus(status)
	st.CreatedAt = ts
	return &st, nil
}

// Fixed-width so that created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func isSqliteConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SqliteRouteRepository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := sqliteTxFromContext(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return s.DB.ExecContext(ctx, query, args...)
}

func (s *SqliteRouteRepository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if tx := sqliteTxFromContext(ctx); tx != nil {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return s.DB.QueryRowContext(ctx, query, args...)
}

func (s *SqliteRouteRepository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if tx := sqliteTxFromContext(ctx); tx != nil {
		return tx.QueryContext(ctx, query, args...)
	}
	return s.DB.QueryContext(ctx, query, args...)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"logistics-route-service/internal/clock"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/audit"
	"logistics-route-service/internal/platform/obs"
	"logistics-route-service/internal/ports"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultOrderLimit = 200
	MaxOrderLimit     = 1000
)

type GenerateRouteRequest struct {
	Date     time.Time
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
	Audit    audit.Context
}

type RouteServiceConfig struct {
	DispatchMaxAttempts int
	DispatchRetryDelay  time.Duration
}

// RouteService generates delivery routes and drives stop/route status.
type RouteService struct {
	repo     ports.RouteRepository
	gateways ports.GatewayFactory
	events   ports.EventPublisher
	clock    clock.Clock
	log      *zap.Logger
	cfg      RouteServiceConfig
	newID    func() uuid.UUID
}

func NewRouteService(
	repo ports.RouteRepository,
	gateways ports.GatewayFactory,
	events ports.EventPublisher,
	clk clock.Clock,
	log *zap.Logger,
	cfg RouteServiceConfig,
) *RouteService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DispatchMaxAttempts < 1 {
		cfg.DispatchMaxAttempts = DefaultDispatchAttempts
	}
	return &RouteService{
		repo:     repo,
		gateways: gateways,
		events:   events,
		clock:    clk,
		log:      log,
		cfg:      cfg,
		newID:    uuid.New,
	}
}

// GenerateRoute builds and persists the route for req.Date from the approved
// orders of the order service, then marks those orders dispatched.
// Dispatch failures are logged and do not fail the call.
func (s *RouteService) GenerateRoute(ctx context.Context, req GenerateRouteRequest) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "service.GenerateRoute")(&err)

	date := dateOnly(req.Date)
	country := req.Audit.Country
	if country == "" {
		country = audit.DefaultCountry
	}
	log := s.log.With(
		zap.String("req_id", req.Audit.RequestID),
		zap.String("country", country),
		zap.String("date", date.Format(time.DateOnly)),
	)

	orderType := req.Type
	if orderType == "" {
		orderType = domain.OrderTypeSale
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultOrderLimit
	}

	orders := s.gateways.Orders(country)
	customers := s.gateways.Customers(country)

	log.Info("generate route",
		zap.String("type", orderType),
		zap.Int("limit", limit),
		zap.Int("offset", req.Offset))

	fetched, err := orders.ListApprovedOrders(ctx, domain.OrderQuery{
		Date:     date,
		Type:     orderType,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, err
	}
	if len(fetched) == 0 {
		log.Info("no approved orders for date")
		return nil, domain.ErrNoOrdersFound
	}

	existing, err := s.repo.FindActiveRouteByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("generate route: duplicate check: %w", err)
	}
	if existing != nil {
		log.Info("route already exists",
			zap.String("route_id", existing.ID.String()),
			zap.String("status", string(existing.Status)))
		return nil, fmt.Errorf("%w: %s (id=%s)", domain.ErrRouteAlreadyExists, date.Format(time.DateOnly), existing.ID)
	}

	lookup := newCustomerLookup(customers, log)
	valid := make([]enrichedOrder, 0, len(fetched))
	for _, o := range fetched {
		id, err := uuid.Parse(o.ID)
		if err != nil {
			log.Warn("skipping order with invalid id", zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		detail := lookup.detail(ctx, o.CustomerID)
		valid = append(valid, enrichedOrder{
			ID:         id,
			CustomerID: o.CustomerID,
			Address:    detail.Address,
			City:       detail.City,
		})
	}

	groups := groupOrders(valid)

	now := s.clock.Now()
	route := &domain.Route{
		ID:           s.newID(),
		DeliveryDate: date,
		Status:       domain.RouteStatusPlanned,
		CreatedAt:    now,
	}
	buildStops(route, groups, s.newID)

	if err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateRoute(ctx, route)
	}); err != nil {
		return nil, fmt.Errorf("generate route: persist: %w", err)
	}

	created, err := s.repo.GetRoute(ctx, route.ID)
	if err != nil {
		return nil, fmt.Errorf("generate route: reload: %w", err)
	}
	log.Info("route created",
		zap.String("route_id", created.ID.String()),
		zap.Int("stops", len(created.Stops)),
		zap.Int("orders", created.OrderCount()))

	// Marking runs after commit and must not be cut short by the caller
	// going away.
	notifier := NewDispatchNotifier(orders, s.cfg.DispatchMaxAttempts, s.cfg.DispatchRetryDelay, log)
	dispatchCtx := context.WithoutCancel(ctx)
	failed := 0
	for _, o := range valid {
		if !notifier.MarkDispatched(dispatchCtx, o.ID.String()) {
			failed++
		}
	}
	if failed > 0 {
		log.Warn("some orders were not marked dispatched",
			zap.String("route_id", created.ID.String()),
			zap.Int("failed", failed))
	}

	s.publish(ctx, domain.Event{
		Name:       domain.EventRouteGenerated,
		OccurredAt: s.clock.Now(),
		Country:    country,
		RouteID:    created.ID,
		Attributes: map[string]string{
			"date":            date.Format(time.DateOnly),
			"stops":           strconv.Itoa(len(created.Stops)),
			"orders":          strconv.Itoa(created.OrderCount()),
			"dispatch_failed": strconv.Itoa(failed),
		},
	})

	return created, nil
}

// UpdateStopStatus sets a stop's status and recomputes its route's status
// in one transaction.
func (s *RouteService) UpdateStopStatus(ctx context.Context, stopID uuid.UUID, status domain.StopStatus) (_ *domain.Stop, err error) {
	defer obs.Time(ctx, "service.UpdateStopStatus")(&err)

	if _, err := domain.ParseStopStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%w: %q", err, status)
	}

	var (
		updated     *domain.Stop
		routeID     uuid.UUID
		routeStatus domain.RouteStatus
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		stop, err := s.repo.GetStop(ctx, stopID)
		if err != nil {
			return err
		}

		route, err := s.repo.GetRoute(ctx, stop.RouteID)
		if err != nil {
			if errors.Is(err, domain.ErrRouteNotFound) {
				return fmt.Errorf("%w for stop %s", domain.ErrRouteNotFound, stopID)
			}
			return err
		}

		previous := route.Status
		updated, err = route.ApplyStopStatus(stopID, status)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStopStatus(ctx, stopID, status); err != nil {
			return err
		}
		if route.Status != previous {
			if err := s.repo.UpdateRouteStatus(ctx, route.ID, route.Status); err != nil {
				return err
			}
			s.log.Info("route status changed",
				zap.String("route_id", route.ID.String()),
				zap.String("from", string(previous)),
				zap.String("to", string(route.Status)))
		}

		routeID = route.ID
		routeStatus = route.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stop status updated",
		zap.String("stop_id", stopID.String()),
		zap.String("status", string(status)),
		zap.String("route_id", routeID.String()),
		zap.String("route_status", string(routeStatus)))

	s.publish(ctx, domain.Event{
		Name:       domain.EventStopStatusChanged,
		OccurredAt: s.clock.Now(),
		Country:    audit.FromContext(ctx).Country,
		RouteID:    routeID,
		StopID:     &updated.ID,
		Attributes: map[string]string{
			"status":       string(status),
			"route_status": string(routeStatus),
		},
	})

	return updated, nil
}

func (s *RouteService) GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	return s.repo.GetRoute(ctx, id)
}

// ListRoutesByDate returns every route of the date in any status.
func (s *RouteService) ListRoutesByDate(ctx context.Context, date time.Time) ([]*domain.Route, error) {
	routes, err := s.repo.ListRoutesByDate(ctx, dateOnly(date))
	if err != nil {
		return nil, err
	}
	s.log.Debug("list routes", zap.String("date", date.Format(time.DateOnly)), zap.Int("count", len(routes)))
	return routes, nil
}

// Ping reports whether the route store is reachable.
func (s *RouteService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *RouteService) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish event failed", zap.String("event", event.Name), zap.Error(err))
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

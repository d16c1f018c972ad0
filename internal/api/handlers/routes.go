package handlers

import (
	"context"
	"fmt"
	"logistics-route-service/internal/api/dto"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/audit"
	"logistics-route-service/internal/services"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RouteService is the use-case surface the HTTP layer depends on.
type RouteService interface {
	GenerateRoute(ctx context.Context, req services.GenerateRouteRequest) (*domain.Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	ListRoutesByDate(ctx context.Context, date time.Time) ([]*domain.Route, error)
	UpdateStopStatus(ctx context.Context, stopID uuid.UUID, status domain.StopStatus) (*domain.Stop, error)
}

type RouteHandler struct {
	Service RouteService
}

// Generate handles POST /v1/logistics/routes/generate.
func (h *RouteHandler) Generate(c *gin.Context) {
	date, err := parseDate(c.Query("date"), "date", true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	dateFrom, err := parseOptionalDate(c.Query("dateFrom"), "dateFrom")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	dateTo, err := parseOptionalDate(c.Query("dateTo"), "dateTo")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		badRequest(c, "dateTo must not be before dateFrom")
		return
	}

	limit, err := parseIntParam(c, "limit", services.DefaultOrderLimit)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if limit < 1 || limit > services.MaxOrderLimit {
		badRequest(c, fmt.Sprintf("limit must be between 1 and %d", services.MaxOrderLimit))
		return
	}

	offset, err := parseIntParam(c, "offset", 0)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if offset < 0 {
		badRequest(c, "offset must be >= 0")
		return
	}

	orderType := strings.TrimSpace(c.DefaultQuery("type", domain.OrderTypeSale))
	if orderType == "" {
		orderType = domain.OrderTypeSale
	}

	route, err := h.Service.GenerateRoute(c.Request.Context(), services.GenerateRouteRequest{
		Date:     date,
		Type:     orderType,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Limit:    limit,
		Offset:   offset,
		Audit:    audit.FromContext(c.Request.Context()),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromRoute(route))
}

// Get handles GET /v1/logistics/routes/:id.
func (h *RouteHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid route id")
		return
	}

	route, err := h.Service.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRoute(route))
}

// ListByDate handles GET /v1/logistics/routes?date=.
func (h *RouteHandler) ListByDate(c *gin.Context) {
	date, err := parseDate(c.Query("date"), "date", true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	routes, err := h.Service.ListRoutesByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRoutes(routes))
}

// UpdateStopStatus handles PATCH /v1/logistics/stops/:id/status.
func (h *RouteHandler) UpdateStopStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid stop id")
		return
	}

	var req dto.UpdateStopStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json body: status is required")
		return
	}

	status, err := domain.ParseStopStatus(strings.TrimSpace(req.Status))
	if err != nil {
		badRequest(c, "status must be one of PENDING, DELIVERED, FAILED")
		return
	}

	stop, err := h.Service.UpdateStopStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStop(stop))
}

func parseDate(raw, name string, required bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return time.Time{}, fmt.Errorf("%s is required (YYYY-MM-DD)", name)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", name)
	}
	return t, nil
}

func parseOptionalDate(raw, name string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(raw, name, false)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

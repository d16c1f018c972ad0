package dto

import (
	"logistics-route-service/internal/domain"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type StopResponse struct {
	ID         string   `json:"id"`
	RouteID    string   `json:"routeId,omitempty"`
	CustomerID *int64   `json:"customerId"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	Status     string   `json:"status"`
	Order      int      `json:"order"`
	OrderIDs   []string `json:"orderIds"`
}

type RouteResponse struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Stops     []StopResponse `json:"stops"`
}

type UpdateStopStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func FromRoute(r *domain.Route) RouteResponse {
	stops := make([]StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, stopResponse(s, false))
	}
	return RouteResponse{
		ID:        r.ID.String(),
		Date:      r.DeliveryDate.Format(DateLayout),
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		Stops:     stops,
	}
}

func FromRoutes(routes []*domain.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, FromRoute(r))
	}
	return out
}

// FromStop renders a stop on its own, including its route id.
func FromStop(s *domain.Stop) StopResponse {
	return stopResponse(s, true)
}

func stopResponse(s *domain.Stop, withRoute bool) StopResponse {
	res := StopResponse{
		ID:         s.ID.String(),
		CustomerID: s.CustomerID,
		Address:    s.Address,
		City:       s.City,
		Status:     string(s.Status),
		Order:      s.Order,
		OrderIDs:   orderIDs(s.OrderIDs),
	}
	if withRoute {
		res.RouteID = s.RouteID.String()
	}
	return res
}

func orderIDs(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

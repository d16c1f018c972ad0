package repositories

import (
	"logistics-route-service/internal/domain"
	"strings"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// attachStops distributes stops (already sorted by stop_order) to their
// routes and order links to their stops.
func attachStops(routes []*domain.Route, stops []*domain.Stop, links []domain.OrderLink) {
	byStop := make(map[uuid.UUID]*domain.Stop, len(stops))
	for _, s := range stops {
		byStop[s.ID] = s
	}
	for _, l := range links {
		if s, ok := byStop[l.StopID]; ok {
			s.OrderIDs = append(s.OrderIDs, l.OrderID)
		}
	}

	byRoute := make(map[uuid.UUID]*domain.Route, len(routes))
	for _, r := range routes {
		r.Stops = make([]*domain.Stop, 0)
		byRoute[r.ID] = r
	}
	for _, s := range stops {
		if s.OrderIDs == nil {
			s.OrderIDs = make([]uuid.UUID, 0)
		}
		if r, ok := byRoute[s.RouteID]; ok {
			r.Stops = append(r.Stops, s)
		}
	}
}

func routeIDs(routes []*domain.Route) []string {
	ids := make([]string, 0, len(routes))
	for _, r := range routes {
		ids = append(ids, r.ID.String())
	}
	return ids
}

func stopIDs(stops []*domain.Stop) []string {
	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID.String())
	}
	return ids
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

package services

import (
	"logistics-route-service/internal/domain"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// enrichedOrder is a fetched order with a valid id and its customer data.
type enrichedOrder struct {
	ID         uuid.UUID
	CustomerID *int64
	Address    *string
	City       *string
}

type stopKey struct {
	customer string
	address  string
	city     string
}

// stopGroup collects the orders delivered at one stop. The representative
// customer/address/city are the raw values of the first order.
type stopGroup struct {
	key        stopKey
	CustomerID *int64
	Address    *string
	City       *string
	OrderIDs   []uuid.UUID
}

// normalize trims and case-folds s. Blank values normalize to "".
func normalize(s *string) string {
	if s == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return ""
	}
	return cases.Fold().String(trimmed)
}

// noCustomerKey sorts after every numeric customer id.
const noCustomerKey = "None"

func customerKey(id *int64) string {
	if id == nil {
		return noCustomerKey
	}
	return strconv.FormatInt(*id, 10)
}

// groupOrders groups orders by (customer, normalized address, normalized
// city) and sorts the groups by (customer as text, city, address).
func groupOrders(orders []enrichedOrder) []*stopGroup {
	byKey := make(map[stopKey]*stopGroup)
	groups := make([]*stopGroup, 0)

	for _, o := range orders {
		k := stopKey{
			customer: customerKey(o.CustomerID),
			address:  normalize(o.Address),
			city:     normalize(o.City),
		}

		g, ok := byKey[k]
		if !ok {
			g = &stopGroup{
				key:        k,
				CustomerID: o.CustomerID,
				Address:    o.Address,
				City:       o.City,
			}
			byKey[k] = g
			groups = append(groups, g)
		}
		if !containsID(g.OrderIDs, o.ID) {
			g.OrderIDs = append(g.OrderIDs, o.ID)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].key, groups[j].key
		if a.customer != b.customer {
			return a.customer < b.customer
		}
		if a.city != b.city {
			return a.city < b.city
		}
		return a.address < b.address
	})

	return groups
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// buildStops turns sorted groups into PENDING stops numbered from 1.
func buildStops(route *domain.Route, groups []*stopGroup, newID func() uuid.UUID) {
	route.Stops = make([]*domain.Stop, 0, len(groups))
	for i, g := range groups {
		route.Stops = append(route.Stops, &domain.Stop{
			ID:         newID(),
			RouteID:    route.ID,
			CustomerID: g.CustomerID,
			Address:    g.Address,
			City:       g.City,
			Status:     domain.StopStatusPending,
			Order:      i + 1,
			CreatedAt:  route.CreatedAt,
			OrderIDs:   append([]uuid.UUID(nil), g.OrderIDs...),
		})
	}
}

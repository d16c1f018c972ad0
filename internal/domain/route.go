package domain

import (
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "PLANNED"
	RouteStatusInProgress RouteStatus = "IN_PROGRESS"
	RouteStatusCompleted  RouteStatus = "COMPLETED"
	RouteStatusCancelled  RouteStatus = "CANCELLED"
)

type StopStatus string

const (
	StopStatusPending   StopStatus = "PENDING"
	StopStatusDelivered StopStatus = "DELIVERED"
	StopStatusFailed    StopStatus = "FAILED"
)

// ParseStopStatus accepts the canonical values only.
func ParseStopStatus(s string) (StopStatus, error) {
	switch StopStatus(s) {
	case StopStatusPending, StopStatusDelivered, StopStatusFailed:
		return StopStatus(s), nil
	}
	return "", ErrInvalidStopStatus
}

// Represents a delivery run for one date.
// Stops are kept in ascending Order; repositories always return them
// that way.
type Route struct {
	ID           uuid.UUID
	DeliveryDate time.Time
	Status       RouteStatus
	CreatedAt    time.Time
	Stops        []*Stop
}

// Represents one grouped delivery point of a Route.
// CustomerID, Address and City are the raw values of the first order
// grouped into the stop.
type Stop struct {
	ID         uuid.UUID
	RouteID    uuid.UUID
	CustomerID *int64
	Address    *string
	City       *string
	Status     StopStatus
	Order      int
	CreatedAt  time.Time
	OrderIDs   []uuid.UUID
}

// OrderLink references an order owned by the remote order service.
type OrderLink struct {
	StopID  uuid.UUID
	OrderID uuid.UUID
}

func (r *Route) Stop(id uuid.UUID) (*Stop, bool) {
	for _, s := range r.Stops {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// ApplyStopStatus sets the status of one of the route's stops and derives
// the route status from it:
//   - a PLANNED route moves to IN_PROGRESS once a stop is DELIVERED or FAILED
//   - a route moves to COMPLETED when every stop is DELIVERED
//
// A route whose stops end in a mix of DELIVERED and FAILED stays
// IN_PROGRESS. CANCELLED routes keep their status.
func (r *Route) ApplyStopStatus(stopID uuid.UUID, status StopStatus) (*Stop, error) {
	stop, ok := r.Stop(stopID)
	if !ok {
		return nil, ErrStopNotFound
	}
	stop.Status = status

	if r.Status == RouteStatusCancelled {
		return stop, nil
	}

	if r.Status == RouteStatusPlanned && (status == StopStatusDelivered || status == StopStatusFailed) {
		r.Status = RouteStatusInProgress
	}

	if r.allDelivered() {
		r.Status = RouteStatusCompleted
	}

	return stop, nil
}

func (r *Route) allDelivered() bool {
	if len(r.Stops) == 0 {
		return false
	}
	for _, s := range r.Stops {
		if s.Status != StopStatusDelivered {
			return false
		}
	}
	return true
}

// OrderCount returns the number of order links across all stops.
func (r *Route) OrderCount() int {
	n := 0
	for _, s := range r.Stops {
		n += len(s.OrderIDs)
	}
	return n
}

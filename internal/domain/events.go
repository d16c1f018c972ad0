package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRouteGenerated    = "route.generated"
	EventStopStatusChanged = "stop.status_changed"
)

// Event is a notification about a committed change.
type Event struct {
	Name       string
	OccurredAt time.Time
	Country    string
	RouteID    uuid.UUID
	StopID     *uuid.UUID
	Attributes map[string]string
}

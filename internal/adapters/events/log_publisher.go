package events

import (
	"context"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"sort"

	"go.uber.org/zap"
)

// LogPublisher writes domain events to the structured log.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	fields := []zap.Field{
		zap.String("event", event.Name),
		zap.Time("occurred_at", event.OccurredAt),
		zap.String("country", event.Country),
		zap.String("route_id", event.RouteID.String()),
		zap.String("req_id", obs.RequestID(ctx)),
	}
	if event.StopID != nil {
		fields = append(fields, zap.String("stop_id", event.StopID.String()))
	}

	keys := make([]string, 0, len(event.Attributes))
	for k := range event.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, event.Attributes[k]))
	}

	p.log.Info("domain event", fields...)
	return nil
}

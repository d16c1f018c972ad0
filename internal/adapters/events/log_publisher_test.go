package events

import (
	"context"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPublisher_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	pub := NewLogPublisher(zap.New(core))

	routeID := uuid.New()
	stopID := uuid.New()
	ctx := obs.WithRequestID(context.Background(), "req-1")

	err := pub.Publish(ctx, domain.Event{
		Name:       domain.EventStopStatusChanged,
		OccurredAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Country:    "co",
		RouteID:    routeID,
		StopID:     &stopID,
		Attributes: map[string]string{"status": "DELIVERED", "route_status": "COMPLETED"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "events", entry.LoggerName)

	fields := entry.ContextMap()
	assert.Equal(t, "stop.status_changed", fields["event"])
	assert.Equal(t, routeID.String(), fields["route_id"])
	assert.Equal(t, stopID.String(), fields["stop_id"])
	assert.Equal(t, "req-1", fields["req_id"])
	assert.Equal(t, "DELIVERED", fields["status"])
	assert.Equal(t, "COMPLETED", fields["route_status"])
}

func TestLogPublisher_NilLogger(t *testing.T) {
	pub := NewLogPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), domain.Event{Name: domain.EventRouteGenerated}))
}

package ports

import (
	"context"
	"logistics-route-service/internal/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

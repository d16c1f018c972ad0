package ports

import (
	"context"
	"logistics-route-service/internal/domain"
)

// Port: remote service that owns sales orders.
type OrderGateway interface {
	// Return approved orders for the query window.
	ListApprovedOrders(ctx context.Context, q domain.OrderQuery) ([]domain.OrderRecord, error)
	// Flag a single order as dispatched. One attempt, no retry.
	MarkDispatched(ctx context.Context, orderID string) error
}

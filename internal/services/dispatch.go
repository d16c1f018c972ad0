package services

import (
	"context"
	"logistics-route-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDispatchAttempts   = 3
	DefaultDispatchRetryDelay = 600 * time.Millisecond
)

// DispatchNotifier marks remote orders as dispatched with a bounded number
// of attempts and a fixed delay between them.
type DispatchNotifier struct {
	orders      ports.OrderGateway
	maxAttempts int
	retryDelay  time.Duration
	log         *zap.Logger
}

func NewDispatchNotifier(orders ports.OrderGateway, maxAttempts int, retryDelay time.Duration, log *zap.Logger) *DispatchNotifier {
	if maxAttempts < 1 {
		maxAttempts = DefaultDispatchAttempts
	}
	if retryDelay < 0 {
		retryDelay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchNotifier{
		orders:      orders,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		log:         log,
	}
}

// MarkDispatched reports whether any attempt succeeded. Errors never
// escape; there is no wait after the final attempt.
func (n *DispatchNotifier) MarkDispatched(ctx context.Context, orderID string) bool {
	var lastErr error

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		err := n.orders.MarkDispatched(ctx, orderID)
		if err == nil {
			n.log.Info("order marked dispatched",
				zap.String("order_id", orderID),
				zap.Int("attempt", attempt))
			return true
		}

		lastErr = err
		n.log.Warn("mark dispatched failed",
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", n.maxAttempts),
			zap.Error(err))

		if attempt == n.maxAttempts {
			break
		}
		if err := sleepOrDone(ctx, n.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	n.log.Error("could not mark order dispatched",
		zap.String("order_id", orderID),
		zap.Error(lastErr))
	return false
}

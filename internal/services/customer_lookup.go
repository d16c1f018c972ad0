package services

import (
	"context"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/ports"

	"go.uber.org/zap"
)

// customerLookup caches customer details for one route generation. Lookup
// failures are cached as an empty detail and never returned.
type customerLookup struct {
	gateway ports.CustomerGateway
	cache   map[int64]domain.CustomerDetail
	log     *zap.Logger
}

func newCustomerLookup(gateway ports.CustomerGateway, log *zap.Logger) *customerLookup {
	return &customerLookup{
		gateway: gateway,
		cache:   make(map[int64]domain.CustomerDetail),
		log:     log,
	}
}

func (l *customerLookup) detail(ctx context.Context, customerID *int64) domain.CustomerDetail {
	if customerID == nil || *customerID == 0 {
		return domain.CustomerDetail{}
	}
	if d, ok := l.cache[*customerID]; ok {
		return d
	}

	d, err := l.gateway.GetCustomerDetail(ctx, *customerID)
	if err != nil {
		l.log.Warn("customer lookup failed",
			zap.Int64("customer_id", *customerID),
			zap.Error(err))
		d = domain.CustomerDetail{}
	}
	l.cache[*customerID] = d
	return d
}

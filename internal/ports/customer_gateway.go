package ports

import (
	"context"
	"logistics-route-service/internal/domain"
)

// Port: remote service that owns customer address data.
type CustomerGateway interface {
	GetCustomerDetail(ctx context.Context, customerID int64) (domain.CustomerDetail, error)
}

// GatewayFactory builds gateway clients bound to one tenant country.
// Clients are created per request and never shared across tenants.
type GatewayFactory interface {
	Orders(country string) OrderGateway
	Customers(country string) CustomerGateway
}

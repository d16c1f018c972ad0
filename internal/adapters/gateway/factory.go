package gateway

import (
	"logistics-route-service/internal/config"
	"logistics-route-service/internal/ports"
	"net/http"
	"strings"
)

// Factory builds tenant-scoped gateway clients that share one HTTP session.
type Factory struct {
	session *http.Client
	cfg     config.GatewayConfig
}

func NewFactory(cfg config.GatewayConfig, session *http.Client) *Factory {
	if session == nil {
		session = &http.Client{Timeout: cfg.Timeout}
	}
	return &Factory{session: session, cfg: cfg}
}

func (f *Factory) Orders(country string) ports.OrderGateway {
	return NewOrderClient(f.requester(country), f.cfg.OrdersListPath, f.cfg.OrderMarkDispatchedPath)
}

func (f *Factory) Customers(country string) ports.CustomerGateway {
	return NewCustomerClient(f.requester(country), f.cfg.CustomerDetailPath)
}

func (f *Factory) requester(country string) Requester {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = f.cfg.DefaultCountry
	}
	return NewClient(f.session, f.cfg.BaseURL, country)
}

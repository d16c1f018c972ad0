package services

import (
	"context"
	"errors"
	"logistics-route-service/internal/adapters/repositories"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/ports"
	"logistics-route-service/internal/testutil"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errGatewayDown = errors.New("gateway down")

type fakeOrders struct {
	mu        sync.Mutex
	list      []domain.OrderRecord
	listErr   error
	queries   []domain.OrderQuery
	failTimes map[string]int // failures before success; negative fails forever
	calls     map[string]int
}

func newFakeOrders(list ...domain.OrderRecord) *fakeOrders {
	return &fakeOrders{list: list, failTimes: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeOrders) ListApprovedOrders(_ context.Context, q domain.OrderQuery) ([]domain.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeOrders) MarkDispatched(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[orderID]++
	n := f.failTimes[orderID]
	if n < 0 || f.calls[orderID] <= n {
		return errGatewayDown
	}
	return nil
}

func (f *fakeOrders) callsFor(orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[orderID]
}

type fakeCustomers struct {
	mu      sync.Mutex
	details map[int64]domain.CustomerDetail
	fail    map[int64]bool
	calls   map[int64]int
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{
		details: map[int64]domain.CustomerDetail{},
		fail:    map[int64]bool{},
		calls:   map[int64]int{},
	}
}

func (f *fakeCustomers) set(id int64, address, city string) {
	f.details[id] = domain.CustomerDetail{Address: &address, City: &city}
}

func (f *fakeCustomers) GetCustomerDetail(_ context.Context, id int64) (domain.CustomerDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if f.fail[id] {
		return domain.CustomerDetail{}, errGatewayDown
	}
	return f.details[id], nil
}

type fakeFactory struct {
	orders    *fakeOrders
	customers *fakeCustomers
	countries []string
}

func (f *fakeFactory) Orders(country string) ports.OrderGateway {
	f.countries = append(f.countries, country)
	return f.orders
}

func (f *fakeFactory) Customers(country string) ports.CustomerGateway {
	return f.customers
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func newSqliteRepo(t *testing.T) *repositories.SqliteRouteRepository {
	t.Helper()
	db := testutil.NewSQLite(t)
	require.NoError(t, repositories.InitSchema(db))
	return repositories.NewSqliteRouteRepository(db)
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

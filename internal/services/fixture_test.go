package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"stone_sales/internal/events"
	"stone_sales/internal/models"
	"stone_sales/internal/observability"
	"stone_sales/internal/repository"
	"stone_sales/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fixture struct {
	ctx       context.Context
	store     repository.Store
	published *recordingPublisher
	registry  *prometheus.Registry
	metrics   *observability.Metrics
	deps      Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewDB(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	store := repository.NewStore(db)
	published := &recordingPublisher{}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	return &fixture{
		ctx:       context.Background(),
		store:     store,
		published: published,
		registry:  registry,
		metrics:   metrics,
		deps: Dependencies{
			Store:   store,
			Events:  published,
			Metrics: metrics,
			Clock:   func() time.Time { return fixedNow },
		},
	}
}

func (f *fixture) customer(t *testing.T, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name, Email: name + "@example.com", Phone: "08123456789"}
	require.NoError(t, f.store.Customers().Create(f.ctx, customer))
	return customer
}

func (f *fixture) stone(t *testing.T, name, price string, stock int) *models.Stone {
	t.Helper()
	stone := &models.Stone{
		Name:          name,
		Type:          "granite",
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, f.store.Stones().Create(f.ctx, stone))
	return stone
}

func (f *fixture) employee(t *testing.T, name string) *models.Employee {
	t.Helper()
	employee := &models.Employee{Name: name, Salary: decimal.NewFromInt(4000000), HireDate: fixedNow}
	require.NoError(t, f.store.Employees().Create(f.ctx, employee))
	return employee
}

func (f *fixture) stock(t *testing.T, stoneID uint) int {
	t.Helper()
	stone, err := f.store.Stones().GetByID(f.ctx, stoneID)
	require.NoError(t, err)
	return stone.StockQuantity
}

func (f *fixture) orderStatus(t *testing.T, orderID uint) models.OrderStatus {
	t.Helper()
	order, err := f.store.Orders().GetByID(f.ctx, orderID)
	require.NoError(t, err)
	return order.Status
}

// pendingOrder places an order that waits for fulfillment.
func (f *fixture) pendingOrder(t *testing.T, customerID uint, lines ...OrderLine) *models.Order {
	t.Helper()
	order, err := NewOrderService(f.deps).PlaceOrder(f.ctx, PlaceOrderRequest{
		CustomerID:          customerID,
		Lines:               lines,
		RequiresFulfillment: true,
	})
	require.NoError(t, err)
	return order
}

package services

import (
	"context"
	"fmt"

	"stone_sales/internal/observability"
	"stone_sales/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// InventoryLedger owns stone stock counts. It works against whatever
// StoneRepository it is given, so a ledger built from a transaction-scoped
// store participates in that transaction.
type InventoryLedger struct {
	stones  repository.StoneRepository
	metrics *observability.Metrics
}

func NewInventoryLedger(stones repository.StoneRepository, metrics *observability.Metrics) *InventoryLedger {
	return &InventoryLedger{stones: stones, metrics: metrics}
}

// Reserve takes quantity units out of stock with one conditional decrement.
// Stock is left untouched when it cannot cover the request.
func (l *InventoryLedger) Reserve(ctx context.Context, stoneID uint, quantity int) (err error) {
	ctx, span := startSpan(ctx, "inventory.reserve")
	span.SetAttributes(attribute.Int64("stone.id", int64(stoneID)), attribute.Int("quantity", quantity))
	defer func() {
		l.metrics.RecordStock("reserve", err)
		endSpan(span, err)
	}()

	if quantity <= 0 {
		return fmt.Errorf("%w: reserve quantity must be positive, got %d", ErrInvalidInput, quantity)
	}

	ok, err := l.stones.AdjustStock(ctx, stoneID, -quantity)
	if err != nil {
		return fmt.Errorf("failed to reserve stone %d: %w", stoneID, err)
	}
	if ok {
		return nil
	}

	exists, err := l.stones.Exists(ctx, stoneID)
	if err != nil {
		return fmt.Errorf("failed to look up stone %d: %w", stoneID, err)
	}
	if !exists {
		return fmt.Errorf("%w: stone %d", ErrNotFound, stoneID)
	}
	return fmt.Errorf("%w: stone %d cannot cover %d", ErrInsufficientStock, stoneID, quantity)
}

// Release puts quantity units back into stock.
func (l *InventoryLedger) Release(ctx context.Context, stoneID uint, quantity int) (err error) {
	ctx, span := startSpan(ctx, "inventory.release")
	span.SetAttributes(attribute.Int64("stone.id", int64(stoneID)), attribute.Int("quantity", quantity))
	defer func() {
		l.metrics.RecordStock("release", err)
		endSpan(span, err)
	}()

	if quantity <= 0 {
		return fmt.Errorf("%w: release quantity must be positive, got %d", ErrInvalidInput, quantity)
	}

	ok, err := l.stones.AdjustStock(ctx, stoneID, quantity)
	if err != nil {
		return fmt.Errorf("failed to release stone %d: %w", stoneID, err)
	}
	if !ok {
		return fmt.Errorf("%w: stone %d", ErrNotFound, stoneID)
	}
	return nil
}

// InventoryService runs ledger operations as standalone units of work.
type InventoryService interface {
	Reserve(ctx context.Context, stoneID uint, quantity int) error
	Release(ctx context.Context, stoneID uint, quantity int) error
}

type inventoryService struct {
	deps Dependencies
}

func NewInventoryService(deps Dependencies) InventoryService {
	return &inventoryService{deps: deps.withDefaults()}
}

func (s *inventoryService) Reserve(ctx context.Context, stoneID uint, quantity int) error {
	return s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return NewInventoryLedger(tx.Stones(), s.deps.Metrics).Reserve(ctx, stoneID, quantity)
	})
}

func (s *inventoryService) Release(ctx context.Context, stoneID uint, quantity int) error {
	return s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return NewInventoryLedger(tx.Stones(), s.deps.Metrics).Release(ctx, stoneID, quantity)
	})
}

package services

import (
	"context"
	"fmt"
	"strings"

	"stone_sales/internal/models"
	"stone_sales/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StoneInput struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Size          string          `json:"size"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
}

type CatalogService interface {
	CreateStone(ctx context.Context, input StoneInput) (*models.Stone, error)
	GetStone(ctx context.Context, id uint) (*models.Stone, error)
	ListStones(ctx context.Context) ([]models.Stone, error)
	// UpdateStone changes descriptive fields and price. StockQuantity in the
	// input is ignored; stock moves through Restock and the ledger.
	UpdateStone(ctx context.Context, id uint, input StoneInput) (*models.Stone, error)
	DeleteStone(ctx context.Context, id uint) error
	Restock(ctx context.Context, id uint, quantity int) (*models.Stone, error)
}

type catalogService struct {
	deps Dependencies
}

func NewCatalogService(deps Dependencies) CatalogService {
	return &catalogService{deps: deps.withDefaults()}
}

func (s *catalogService) CreateStone(ctx context.Context, input StoneInput) (*models.Stone, error) {
	if err := validateStone(input); err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", ErrInvalidInput)
	}

	stone := &models.Stone{
		Name:          strings.TrimSpace(input.Name),
		Type:          input.Type,
		Size:          input.Size,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
	}
	if err := s.deps.Store.Stones().Create(ctx, stone); err != nil {
		return nil, fmt.Errorf("failed to create stone: %w", err)
	}
	s.deps.Logger.Info("stone created", zap.Uint("stone_id", stone.ID), zap.String("name", stone.Name))
	return stone, nil
}

func (s *catalogService) GetStone(ctx context.Context, id uint) (*models.Stone, error) {
	stone, err := s.deps.Store.Stones().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "stone %d", id)
	}
	return stone, nil
}

func (s *catalogService) ListStones(ctx context.Context) ([]models.Stone, error) {
	stones, err := s.deps.Store.Stones().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stones: %w", err)
	}
	if stones == nil {
		stones = []models.Stone{}
	}
	return stones, nil
}

func (s *catalogService) UpdateStone(ctx context.Context, id uint, input StoneInput) (*models.Stone, error) {
	if err := validateStone(input); err != nil {
		return nil, err
	}

	stone := &models.Stone{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		Type:      input.Type,
		Size:      input.Size,
		UnitPrice: input.UnitPrice,
	}
	if err := s.deps.Store.Stones().Update(ctx, stone); err != nil {
		return nil, notFound(err, "stone %d", id)
	}
	return s.GetStone(ctx, id)
}

// DeleteStone removes a stone from the catalog. Line items that referenced it
// keep their quantity and price snapshot but lose the stone link.
func (s *catalogService) DeleteStone(ctx context.Context, id uint) error {
	var detached int64
	err := s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		detached, err = tx.OrderItems().DetachStone(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to detach order items from stone %d: %w", id, err)
		}
		if err := tx.Stones().Delete(ctx, id); err != nil {
			return notFound(err, "stone %d", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("stone deleted", zap.Uint("stone_id", id), zap.Int64("detached_items", detached))
	return nil
}

func (s *catalogService) Restock(ctx context.Context, id uint, quantity int) (*models.Stone, error) {
	err := s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return NewInventoryLedger(tx.Stones(), s.deps.Metrics).Release(ctx, id, quantity)
	})
	if err != nil {
		return nil, err
	}

	stone, err := s.GetStone(ctx, id)
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("stone restocked",
		zap.Uint("stone_id", id),
		zap.Int("quantity", quantity),
		zap.Int("stock", stone.StockQuantity),
	)
	return stone, nil
}

func validateStone(input StoneInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: stone name is required", ErrInvalidInput)
	}
	if input.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	}
	return nil
}

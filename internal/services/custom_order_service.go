package services

import (
	"context"
	"fmt"
	"strings"

	"stone_sales/internal/events"
	"stone_sales/internal/models"
	"stone_sales/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type SubmitCustomOrderRequest struct {
	CustomerID  uint   `json:"customer_id"`
	StoneType   string `json:"stone_type"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
}

// ConversionPricing optionally prices a converted request against a catalog
// stone. The request quantity is reserved from that stone. UnitPrice overrides
// the catalog price when set.
type ConversionPricing struct {
	StoneID   uint             `json:"stone_id"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type CustomOrderFilter struct {
	Status     *models.CustomOrderStatus
	CustomerID *uint
}

type CustomOrderService interface {
	Submit(ctx context.Context, req SubmitCustomOrderRequest) (*models.CustomOrder, error)
	Get(ctx context.Context, id uint) (*models.CustomOrder, error)
	List(ctx context.Context, filter CustomOrderFilter) ([]models.CustomOrder, error)
	// Convert turns a pending request into a pending order and returns the new order id.
	Convert(ctx context.Context, id uint, pricing *ConversionPricing) (uint, error)
	Reject(ctx context.Context, id uint) (*models.CustomOrder, error)
}

type customOrderService struct {
	deps Dependencies
}

func NewCustomOrderService(deps Dependencies) CustomOrderService {
	return &customOrderService{deps: deps.withDefaults()}
}

func (s *customOrderService) Submit(ctx context.Context, req SubmitCustomOrderRequest) (*models.CustomOrder, error) {
	req.StoneType = strings.TrimSpace(req.StoneType)
	if req.StoneType == "" {
		return nil, fmt.Errorf("%w: stone type is required", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidInput, req.Quantity)
	}
	if _, err := s.deps.Store.Customers().GetByID(ctx, req.CustomerID); err != nil {
		return nil, notFound(err, "customer %d", req.CustomerID)
	}

	customOrder := &models.CustomOrder{
		CustomerID:  req.CustomerID,
		StoneType:   req.StoneType,
		Description: req.Description,
		Size:        req.Size,
		Quantity:    req.Quantity,
		Status:      models.CustomOrderPending,
	}
	if err := s.deps.Store.CustomOrders().Create(ctx, customOrder); err != nil {
		return nil, fmt.Errorf("failed to create custom order: %w", err)
	}

	s.deps.Logger.Info("custom order submitted",
		zap.Uint("custom_order_id", customOrder.ID),
		zap.Uint("customer_id", customOrder.CustomerID),
	)
	s.deps.publish(ctx, events.OrderEvent{
		Type:          events.CustomOrderSubmitted,
		CustomOrderID: customOrder.ID,
		CustomerID:    customOrder.CustomerID,
		Status:        customOrder.Status.String(),
	})
	return customOrder, nil
}

func (s *customOrderService) Get(ctx context.Context, id uint) (*models.CustomOrder, error) {
	customOrder, err := s.deps.Store.CustomOrders().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "custom order %d", id)
	}
	return customOrder, nil
}

func (s *customOrderService) List(ctx context.Context, filter CustomOrderFilter) ([]models.CustomOrder, error) {
	customOrders, err := s.deps.Store.CustomOrders().List(ctx, filter.Status, filter.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom orders: %w", err)
	}
	if customOrders == nil {
		customOrders = []models.CustomOrder{}
	}
	return customOrders, nil
}

func (s *customOrderService) Convert(ctx context.Context, id uint, pricing *ConversionPricing) (orderID uint, err error) {
	ctx, span := startSpan(ctx, "custom_order.convert")
	span.SetAttributes(attribute.Int64("custom_order.id", int64(id)), attribute.Bool("priced", pricing != nil))
	defer func() {
		s.deps.Metrics.RecordConversion("convert", err)
		endSpan(span, err)
	}()

	var request *models.CustomOrder
	err = s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.CustomOrders().GetByID(ctx, id)
		if err != nil {
			return notFound(err, "custom order %d", id)
		}
		if request.Status != models.CustomOrderPending {
			return fmt.Errorf("%w: custom order %d is %s", ErrAlreadyConverted, id, request.Status)
		}

		sourceID := request.ID
		order := &models.Order{
			CustomerID:          request.CustomerID,
			SourceCustomOrderID: &sourceID,
			OrderDate:           s.deps.now(),
			Status:              models.OrderPending,
			TotalAmount:         decimal.Zero,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order for custom order %d: %w", id, err)
		}

		if pricing != nil {
			if err := s.price(ctx, tx, order, request.Quantity, pricing); err != nil {
				return err
			}
		}

		ok, err := tx.CustomOrders().UpdateStatus(ctx, id, models.CustomOrderPending, models.CustomOrderConverted, &order.ID)
		if err != nil {
			return fmt.Errorf("failed to mark custom order %d converted: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("%w: custom order %d changed during conversion", ErrAlreadyConverted, id)
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.deps.Logger.Info("custom order converted",
		zap.Uint("custom_order_id", id),
		zap.Uint("order_id", orderID),
	)
	s.deps.publish(ctx, events.OrderEvent{
		Type:          events.CustomOrderConverted,
		OrderID:       orderID,
		CustomOrderID: id,
		CustomerID:    request.CustomerID,
		Status:        models.OrderPending.String(),
	})
	return orderID, nil
}

// price reserves the requested quantity from the chosen stone and records it as
// the order's first line item.
func (s *customOrderService) price(ctx context.Context, tx repository.Store, order *models.Order, quantity int, pricing *ConversionPricing) error {
	stone, err := tx.Stones().GetByID(ctx, pricing.StoneID)
	if err != nil {
		return notFound(err, "stone %d", pricing.StoneID)
	}

	unitPrice := stone.UnitPrice
	if pricing.UnitPrice != nil {
		if pricing.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
		}
		unitPrice = *pricing.UnitPrice
	}

	if err := NewInventoryLedger(tx.Stones(), s.deps.Metrics).Reserve(ctx, stone.ID, quantity); err != nil {
		return err
	}

	stoneID := stone.ID
	item := &models.OrderItem{
		OrderID:   order.ID,
		StoneID:   &stoneID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := tx.OrderItems().Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return tx.Orders().UpdateTotal(ctx, order.ID, item.Subtotal())
}

func (s *customOrderService) Reject(ctx context.Context, id uint) (customOrder *models.CustomOrder, err error) {
	ctx, span := startSpan(ctx, "custom_order.reject")
	span.SetAttributes(attribute.Int64("custom_order.id", int64(id)))
	defer func() {
		s.deps.Metrics.RecordConversion("reject", err)
		endSpan(span, err)
	}()

	ok, err := s.deps.Store.CustomOrders().UpdateStatus(ctx, id, models.CustomOrderPending, models.CustomOrderRejected, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to reject custom order %d: %w", id, err)
	}

	customOrder, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: custom order %d is %s", ErrAlreadyConverted, id, customOrder.Status)
	}

	s.deps.Logger.Info("custom order rejected", zap.Uint("custom_order_id", id))
	s.deps.publish(ctx, events.OrderEvent{
		Type:          events.CustomOrderRejected,
		CustomOrderID: id,
		CustomerID:    customOrder.CustomerID,
		Status:        customOrder.Status.String(),
	})
	return customOrder, nil
}

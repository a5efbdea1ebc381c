package services

import (
	"context"
	"errors"
	"fmt"

	"stone_sales/internal/events"
	"stone_sales/internal/models"
	"stone_sales/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxTransitionAttempts bounds how often a transition re-reads the order after
// losing a compare-and-set race.
const maxTransitionAttempts = 3

type OrderLine struct {
	StoneID  uint `json:"stone_id"`
	Quantity int  `json:"quantity"`
}

// PlaceOrderRequest describes a purchase. Self-checkout purchases complete
// immediately; RequiresFulfillment leaves the order pending for staff.
type PlaceOrderRequest struct {
	CustomerID          uint        `json:"customer_id"`
	Lines               []OrderLine `json:"lines"`
	RequiresFulfillment bool        `json:"requires_fulfillment"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	// TransitionStatus applies a state machine edge. On ErrNoChange the
	// unchanged order is returned alongside the error.
	TransitionStatus(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, id uint) (*models.Order, error)
	AssignEmployee(ctx context.Context, orderID, employeeID uint) (*models.Order, error)
	UnassignEmployee(ctx context.Context, orderID uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error)
	ListActive(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error)
	ListArchived(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error)
}

type orderService struct {
	deps Dependencies
}

func NewOrderService(deps Dependencies) OrderService {
	return &orderService{deps: deps.withDefaults()}
}

func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (placed *models.Order, err error) {
	ctx, span := startSpan(ctx, "order.place")
	span.SetAttributes(attribute.Int64("customer.id", int64(req.CustomerID)), attribute.Int("order.lines", len(req.Lines)))
	defer func() {
		s.deps.Metrics.RecordPlacement(err)
		endSpan(span, err)
	}()

	if err := validateOrderLines(req.Lines); err != nil {
		return nil, err
	}

	status := models.OrderCompleted
	if req.RequiresFulfillment {
		status = models.OrderPending
	}
	order := &models.Order{
		CustomerID:  req.CustomerID,
		OrderDate:   s.deps.now(),
		Status:      status,
		TotalAmount: decimal.Zero,
	}

	err = s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Customers().GetByID(ctx, req.CustomerID); err != nil {
			return notFound(err, "customer %d", req.CustomerID)
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		ledger := NewInventoryLedger(tx.Stones(), s.deps.Metrics)
		total := decimal.Zero
		for _, line := range req.Lines {
			stone, err := tx.Stones().GetByID(ctx, line.StoneID)
			if err != nil {
				return notFound(err, "stone %d", line.StoneID)
			}
			if err := ledger.Reserve(ctx, stone.ID, line.Quantity); err != nil {
				return err
			}

			stoneID := stone.ID
			item := &models.OrderItem{
				OrderID:   order.ID,
				StoneID:   &stoneID,
				Quantity:  line.Quantity,
				UnitPrice: stone.UnitPrice,
			}
			if err := tx.OrderItems().Create(ctx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			total = total.Add(item.Subtotal())
		}
		return tx.Orders().UpdateTotal(ctx, order.ID, total)
	})
	if err != nil {
		return nil, err
	}

	placed, err = s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("order placed",
		zap.Uint("order_id", placed.ID),
		zap.Uint("customer_id", placed.CustomerID),
		zap.String("status", placed.Status.String()),
		zap.String("total", placed.TotalAmount.StringFixed(2)),
	)
	s.deps.publish(ctx, events.OrderEvent{
		Type:       events.OrderPlaced,
		OrderID:    placed.ID,
		CustomerID: placed.CustomerID,
		Status:     placed.Status.String(),
	})
	return placed, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.deps.Store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return order, nil
}

func (s *orderService) TransitionStatus(ctx context.Context, id uint, to models.OrderStatus) (order *models.Order, err error) {
	ctx, span := startSpan(ctx, "order.transition")
	span.SetAttributes(attribute.Int64("order.id", int64(id)), attribute.String("order.to", to.String()))
	defer func() {
		if errors.Is(err, ErrNoChange) {
			s.deps.Metrics.RecordUnchangedTransition(to.String())
			span.SetAttributes(attribute.Bool("order.unchanged", true))
			endSpan(span, nil)
			return
		}
		s.deps.Metrics.RecordTransition(to.String(), err)
		endSpan(span, err)
	}()

	var from models.OrderStatus
	txErr := s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
			current, err := tx.Orders().GetByID(ctx, id)
			if err != nil {
				return notFound(err, "order %d", id)
			}
			from = current.Status

			if err := ValidateTransition(current.Status, to); err != nil {
				return &TransitionError{OrderID: id, From: current.Status, To: to, Err: err}
			}

			ok, err := tx.Orders().UpdateStatus(ctx, id, current.Status, to)
			if err != nil {
				return fmt.Errorf("failed to update order %d status: %w", id, err)
			}
			if !ok {
				continue
			}

			if to == models.OrderCancelled {
				return s.restock(ctx, tx, current)
			}
			return nil
		}
		return fmt.Errorf("%w: order %d", ErrConcurrentUpdate, id)
	})
	if txErr != nil && !errors.Is(txErr, ErrNoChange) {
		return nil, txErr
	}

	order, err = s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if txErr != nil {
		return order, txErr
	}

	s.deps.Logger.Info("order status changed",
		zap.Uint("order_id", id),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	s.deps.publish(ctx, events.OrderEvent{
		Type:       events.OrderStatusChanged,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		EmployeeID: order.EmployeeID,
		Status:     order.Status.String(),
	})
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.TransitionStatus(ctx, id, models.OrderCancelled)
}

// restock returns every line item's quantity to stock. Items whose stone has
// been deleted are skipped.
func (s *orderService) restock(ctx context.Context, tx repository.Store, order *models.Order) error {
	ledger := NewInventoryLedger(tx.Stones(), s.deps.Metrics)
	for _, item := range order.Items {
		if item.StoneID == nil {
			continue
		}
		err := ledger.Release(ctx, *item.StoneID, item.Quantity)
		if errors.Is(err, ErrNotFound) {
			s.deps.Logger.Warn("restock skipped for missing stone",
				zap.Uint("order_id", order.ID),
				zap.Uint("stone_id", *item.StoneID),
			)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) AssignEmployee(ctx context.Context, orderID, employeeID uint) (*models.Order, error) {
	return s.setEmployee(ctx, orderID, &employeeID)
}

func (s *orderService) UnassignEmployee(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.setEmployee(ctx, orderID, nil)
}

func (s *orderService) setEmployee(ctx context.Context, orderID uint, employeeID *uint) (order *models.Order, err error) {
	ctx, span := startSpan(ctx, "order.assign_employee")
	span.SetAttributes(attribute.Int64("order.id", int64(orderID)))
	defer func() { endSpan(span, err) }()

	err = s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		current, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return notFound(err, "order %d", orderID)
		}
		if current.ReadOnly() {
			return fmt.Errorf("%w: order %d is completed", ErrOrderReadOnly, orderID)
		}
		if employeeID != nil {
			if _, err := tx.Employees().GetByID(ctx, *employeeID); err != nil {
				return notFound(err, "employee %d", *employeeID)
			}
		}

		ok, err := tx.Orders().UpdateEmployee(ctx, orderID, employeeID)
		if err != nil {
			return fmt.Errorf("failed to update order %d employee: %w", orderID, err)
		}
		if !ok {
			return fmt.Errorf("%w: order %d is completed", ErrOrderReadOnly, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err = s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{zap.Uint("order_id", orderID)}
	if employeeID != nil {
		fields = append(fields, zap.Uint("employee_id", *employeeID))
	}
	s.deps.Logger.Info("order employee updated", fields...)
	s.deps.publish(ctx, events.OrderEvent{
		Type:       events.OrderEmployeeAssigned,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		EmployeeID: order.EmployeeID,
		Status:     order.Status.String(),
	})
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error) {
	return s.list(ctx, filter)
}

// ListActive reads pending and processing orders straight from the store.
func (s *orderService) ListActive(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error) {
	filter.Statuses = ActiveStatuses()
	return s.list(ctx, filter)
}

// ListArchived reads completed and cancelled orders straight from the store.
func (s *orderService) ListArchived(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error) {
	filter.Statuses = ArchivedStatuses()
	return s.list(ctx, filter)
}

func (s *orderService) list(ctx context.Context, filter repository.OrderFilter) ([]OrderView, error) {
	orders, err := s.deps.Store.Orders().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, NewOrderView(order))
	}
	return views, nil
}

func validateOrderLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: an order needs at least one line", ErrInvalidInput)
	}
	for i, line := range lines {
		if line.StoneID == 0 {
			return fmt.Errorf("%w: line %d has no stone", ErrInvalidInput, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i+1)
		}
	}
	return nil
}

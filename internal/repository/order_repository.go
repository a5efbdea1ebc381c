package repository

import (
	"context"
	"stone_sales/internal/models"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows List results. Zero values mean "any".
type OrderFilter struct {
	Statuses   []models.OrderStatus
	CustomerID *uint
	EmployeeID *uint
	// From and To bound order_date inclusively.
	From *time.Time
	To   *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetBySourceCustomOrder(ctx context.Context, customOrderID uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus moves the order from `from` to `to` only if the stored status
	// still equals `from`. It reports false when the row did not match.
	UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error)
	// UpdateEmployee sets (or clears, when employeeID is nil) the assignee of a
	// non-completed order. It reports false when the row did not match.
	UpdateEmployee(ctx context.Context, id uint, employeeID *uint) (bool, error)
	UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error
	// UnassignEmployee clears the employee from every order it holds, completed
	// ones included, so no order points at a removed employee.
	UnassignEmployee(ctx context.Context, employeeID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).First(&order, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *orderRepository) GetBySourceCustomOrder(ctx context.Context, customOrderID uint) (*models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Where("source_custom_order_id = ?", customOrderID).First(&order).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.withItems(ctx)
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.From != nil {
		query = query.Where("order_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("order_date <= ?", *filter.To)
	}

	var orders []models.Order
	err := query.Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) UpdateEmployee(ctx context.Context, id uint, employeeID *uint) (bool, error) {
	var value any = gorm.Expr("NULL")
	if employeeID != nil {
		value = *employeeID
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status <> ?", id, models.OrderCompleted).
		Update("employee_id", value)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("total_amount", total).Error
}

func (r *orderRepository) UnassignEmployee(ctx context.Context, employeeID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("employee_id = ?", employeeID).
		Update("employee_id", gorm.Expr("NULL"))
	return result.RowsAffected, result.Error
}

func (r *orderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

package repository

import (
	"context"
	"stone_sales/internal/models"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	Create(ctx context.Context, orderItem *models.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	// DetachStone clears the stone reference of every item pointing at stoneID.
	DetachStone(ctx context.Context, stoneID uint) (int64, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, orderItem *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(orderItem).Error
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var orderItems []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&orderItems).Error
	return orderItems, err
}

func (r *orderItemRepository) DetachStone(ctx context.Context, stoneID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("stone_id = ?", stoneID).
		Update("stone_id", gorm.Expr("NULL"))
	return result.RowsAffected, result.Error
}

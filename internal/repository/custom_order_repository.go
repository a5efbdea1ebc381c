package repository

import (
	"context"
	"stone_sales/internal/models"

	"gorm.io/gorm"
)

type CustomOrderRepository interface {
	Create(ctx context.Context, customOrder *models.CustomOrder) error
	GetByID(ctx context.Context, id uint) (*models.CustomOrder, error)
	List(ctx context.Context, status *models.CustomOrderStatus, customerID *uint) ([]models.CustomOrder, error)
	// UpdateStatus moves the request from `from` to `to` (and links orderID when
	// given) only if the stored status still equals `from`.
	UpdateStatus(ctx context.Context, id uint, from, to models.CustomOrderStatus, orderID *uint) (bool, error)
}

type customOrderRepository struct {
	db *gorm.DB
}

func NewCustomOrderRepository(db *gorm.DB) CustomOrderRepository {
	return &customOrderRepository{db: db}
}

func (r *customOrderRepository) Create(ctx context.Context, customOrder *models.CustomOrder) error {
	return r.db.WithContext(ctx).Create(customOrder).Error
}

func (r *customOrderRepository) GetByID(ctx context.Context, id uint) (*models.CustomOrder, error) {
	var customOrder models.CustomOrder
	if err := r.db.WithContext(ctx).First(&customOrder, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &customOrder, nil
}

func (r *customOrderRepository) List(ctx context.Context, status *models.CustomOrderStatus, customerID *uint) ([]models.CustomOrder, error) {
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var customOrders []models.CustomOrder
	err := query.Order("created_at DESC, id DESC").Find(&customOrders).Error
	return customOrders, err
}

func (r *customOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.CustomOrderStatus, orderID *uint) (bool, error) {
	updates := map[string]interface{}{
		"status": to,
	}
	if orderID != nil {
		updates["order_id"] = *orderID
	}

	result := r.db.WithContext(ctx).Model(&models.CustomOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

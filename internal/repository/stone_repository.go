package repository

import (
	"context"
	"stone_sales/internal/models"

	"gorm.io/gorm"
)

type StoneRepository interface {
	Create(ctx context.Context, stone *models.Stone) error
	GetByID(ctx context.Context, id uint) (*models.Stone, error)
	Exists(ctx context.Context, id uint) (bool, error)
	GetAll(ctx context.Context) ([]models.Stone, error)
	// Update writes the descriptive fields and price. Stock only moves through AdjustStock.
	Update(ctx context.Context, stone *models.Stone) error
	Delete(ctx context.Context, id uint) error
	// AdjustStock adds delta to the stone's stock only if the result stays
	// non-negative. It reports false when no row satisfied the condition.
	AdjustStock(ctx context.Context, id uint, delta int) (bool, error)
}

type stoneRepository struct {
	db *gorm.DB
}

func NewStoneRepository(db *gorm.DB) StoneRepository {
	return &stoneRepository{db: db}
}

func (r *stoneRepository) Create(ctx context.Context, stone *models.Stone) error {
	return r.db.WithContext(ctx).Create(stone).Error
}

func (r *stoneRepository) GetByID(ctx context.Context, id uint) (*models.Stone, error) {
	var stone models.Stone
	if err := r.db.WithContext(ctx).First(&stone, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &stone, nil
}

func (r *stoneRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Stone{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *stoneRepository) GetAll(ctx context.Context) ([]models.Stone, error) {
	var stones []models.Stone
	err := r.db.WithContext(ctx).Order("id").Find(&stones).Error
	return stones, err
}

func (r *stoneRepository) Update(ctx context.Context, stone *models.Stone) error {
	result := r.db.WithContext(ctx).Model(stone).
		Select("name", "type", "size", "unit_price").
		Updates(stone)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stoneRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Stone{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stoneRepository) AdjustStock(ctx context.Context, id uint, delta int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Stone{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

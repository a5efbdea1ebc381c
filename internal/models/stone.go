package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stone struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"not null"`
	Type          string          `json:"type" gorm:"not null"`
	Size          string          `json:"size"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0;check:stock_quantity >= 0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

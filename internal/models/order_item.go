package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one stone line inside an order. UnitPrice is a snapshot taken at
// order time; StoneID becomes nil once the stone is removed from the catalog.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	StoneID   *uint           `json:"stone_id" gorm:"index"`
	Quantity  int             `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

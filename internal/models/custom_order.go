package models

import "time"

// CustomOrder is a customer's request for a stone that is not in the catalog.
type CustomOrder struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	CustomerID  uint              `json:"customer_id" gorm:"not null;index"`
	StoneType   string            `json:"stone_type" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text"`
	Size        string            `json:"size"`
	Quantity    int               `json:"quantity" gorm:"not null;check:quantity > 0"`
	Status      CustomOrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderID     *uint             `json:"order_id" gorm:"index"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

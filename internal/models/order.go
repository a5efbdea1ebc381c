package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	CustomerID          uint            `json:"customer_id" gorm:"not null;index"`
	EmployeeID          *uint           `json:"employee_id" gorm:"index"`
	SourceCustomOrderID *uint           `json:"source_custom_order_id,omitempty" gorm:"uniqueIndex"`
	OrderDate           time.Time       `json:"order_date" gorm:"not null"`
	TotalAmount         decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status              OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Items               []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ReadOnly reports whether the order is locked against status and employee changes.
func (o *Order) ReadOnly() bool {
	return o.Status == OrderCompleted
}

// Assigned reports whether an employee is attached to the order.
func (o *Order) Assigned() bool {
	return o.EmployeeID != nil
}

package events

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	OrderPlaced           EventType = "order.placed"
	OrderStatusChanged    EventType = "order.status_changed"
	OrderEmployeeAssigned EventType = "order.employee_assigned"
	CustomOrderSubmitted  EventType = "custom_order.submitted"
	CustomOrderConverted  EventType = "custom_order.converted"
	CustomOrderRejected   EventType = "custom_order.rejected"
)

// OrderEvent describes a committed change to an order or custom order.
type OrderEvent struct {
	Type          EventType `json:"type"`
	OrderID       uint      `json:"order_id,omitempty"`
	CustomOrderID uint      `json:"custom_order_id,omitempty"`
	CustomerID    uint      `json:"customer_id"`
	EmployeeID    *uint     `json:"employee_id,omitempty"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// MultiPublisher delivers each event to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event OrderEvent) error {
	var errs error
	for _, p := range m {
		if p == nil {
			continue
		}
		errs = errors.Join(errs, p.Publish(ctx, event))
	}
	return errs
}

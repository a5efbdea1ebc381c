package events

import (
	"context"
	"fmt"

	"stone_sales/internal/models"
)

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// CustomerLookup resolves the customer an event belongs to.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
}

// CustomerNotifier texts customers about changes they care about. Events
// without a customer-facing message are ignored.
type CustomerNotifier struct {
	sender    MessageSender
	customers CustomerLookup
}

func NewCustomerNotifier(sender MessageSender, customers CustomerLookup) *CustomerNotifier {
	return &CustomerNotifier{sender: sender, customers: customers}
}

func (n *CustomerNotifier) Publish(ctx context.Context, event OrderEvent) error {
	message := customerMessage(event)
	if message == "" {
		return nil
	}

	customer, err := n.customers.GetByID(ctx, event.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer %d: %w", event.CustomerID, err)
	}
	if customer.Phone == "" {
		return nil
	}
	return n.sender.SendTextMessage(ctx, customer.Phone, message)
}

func customerMessage(event OrderEvent) string {
	switch event.Type {
	case OrderPlaced:
		return fmt.Sprintf("Thank you! Your order #%d has been received.", event.OrderID)
	case OrderStatusChanged:
		switch models.OrderStatus(event.Status) {
		case models.OrderProcessing:
			return fmt.Sprintf("Your order #%d is now being processed.", event.OrderID)
		case models.OrderCompleted:
			return fmt.Sprintf("Your order #%d is complete.", event.OrderID)
		case models.OrderCancelled:
			return fmt.Sprintf("Your order #%d has been cancelled.", event.OrderID)
		}
	case CustomOrderConverted:
		return fmt.Sprintf("Good news! Your custom stone request #%d was approved as order #%d.", event.CustomOrderID, event.OrderID)
	case CustomOrderRejected:
		return fmt.Sprintf("Sorry, your custom stone request #%d could not be accepted.", event.CustomOrderID)
	}
	return ""
}

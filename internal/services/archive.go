package services

import "stone_sales/internal/models"

// LabelAssigned is shown for pending orders that already have an employee.
const LabelAssigned = "assigned"

// IsArchived reports whether orders in status belong to the archived listing.
func IsArchived(status models.OrderStatus) bool {
	return status.IsTerminal()
}

func ActiveStatuses() []models.OrderStatus {
	return []models.OrderStatus{models.OrderPending, models.OrderProcessing}
}

func ArchivedStatuses() []models.OrderStatus {
	return []models.OrderStatus{models.OrderCompleted, models.OrderCancelled}
}

// OrderLabel is the status label presented to staff.
func OrderLabel(order *models.Order) string {
	if order.Status == models.OrderPending && order.Assigned() {
		return LabelAssigned
	}
	return order.Status.String()
}

// OrderView decorates an order with its derived presentation state.
type OrderView struct {
	models.Order
	Label    string `json:"label"`
	Archived bool   `json:"archived"`
	ReadOnly bool   `json:"read_only"`
}

func NewOrderView(order models.Order) OrderView {
	return OrderView{
		Order:    order,
		Label:    OrderLabel(&order),
		Archived: IsArchived(order.Status),
		ReadOnly: order.ReadOnly(),
	}
}

// PartitionOrders splits orders into active and archived views, preserving order.
func PartitionOrders(orders []models.Order) (active, archived []OrderView) {
	active = []OrderView{}
	archived = []OrderView{}
	for _, order := range orders {
		view := NewOrderView(order)
		if view.Archived {
			archived = append(archived, view)
		} else {
			active = append(active, view)
		}
	}
	return active, archived
}

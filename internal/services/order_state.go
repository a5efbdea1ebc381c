package services

import "stone_sales/internal/models"

// orderTransitions lists the legal edges of the order state machine. Completed
// and Cancelled have no outgoing edges.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing: {models.OrderCompleted, models.OrderCancelled},
}

// ValidateTransition checks a status change against the state machine.
// A completed order is read-only, a same-status request is a no-op, and any
// other pair outside the edge table is invalid.
func ValidateTransition(from, to models.OrderStatus) error {
	if from == models.OrderCompleted {
		return ErrOrderReadOnly
	}
	if from == to {
		return ErrNoChange
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// AllowedTransitions returns the statuses reachable from status in one step.
func AllowedTransitions(status models.OrderStatus) []models.OrderStatus {
	next := orderTransitions[status]
	out := make([]models.OrderStatus, len(next))
	copy(out, next)
	return out
}

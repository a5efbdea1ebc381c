package services

import (
	"errors"
	"fmt"

	"stone_sales/internal/models"
	"stone_sales/internal/repository"
)

var (
	// ErrNotFound indicates a referenced order, stone, custom order, customer or employee does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals the caller provided invalid arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock indicates a reservation would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition indicates the requested status change is not a legal edge.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoChange indicates the requested status equals the current one.
	ErrNoChange = errors.New("status unchanged")
	// ErrOrderReadOnly indicates a mutation was attempted on a completed order.
	ErrOrderReadOnly = errors.New("order is read-only")
	// ErrAlreadyConverted indicates the custom order is no longer pending.
	ErrAlreadyConverted = errors.New("custom order already processed")
	// ErrConcurrentUpdate indicates the row kept changing underneath the operation.
	ErrConcurrentUpdate = errors.New("concurrent update")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransitionError carries the order and statuses involved in a rejected transition.
type TransitionError struct {
	OrderID uint
	From    models.OrderStatus
	To      models.OrderStatus
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %d: %s -> %s: %v", e.OrderID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// notFound maps the repository sentinel onto ErrNotFound with context and
// passes other errors through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

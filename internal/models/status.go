package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a status string is not part of its closed set.
var ErrInvalidStatus = errors.New("invalid status")

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

// ParseOrderStatus normalises user input (any case, surrounding spaces) into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.Valid() {
		return "", fmt.Errorf("%w: order status %q", ErrInvalidStatus, raw)
	}
	return candidate, nil
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is legal out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// Scan rejects unknown values so a corrupted row cannot enter the domain.
func (s *OrderStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	status := OrderStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("%w: order status %q", ErrInvalidStatus, raw)
	}
	*s = status
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: order status %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

type CustomOrderStatus string

const (
	CustomOrderPending   CustomOrderStatus = "pending"
	CustomOrderConverted CustomOrderStatus = "converted"
	CustomOrderRejected  CustomOrderStatus = "rejected"
)

// ParseCustomOrderStatus accepts "approved" as an alias of converted.
func ParseCustomOrderStatus(raw string) (CustomOrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "approved" {
		return CustomOrderConverted, nil
	}
	candidate := CustomOrderStatus(normalized)
	if !candidate.Valid() {
		return "", fmt.Errorf("%w: custom order status %q", ErrInvalidStatus, raw)
	}
	return candidate, nil
}

func (s CustomOrderStatus) Valid() bool {
	switch s {
	case CustomOrderPending, CustomOrderConverted, CustomOrderRejected:
		return true
	}
	return false
}

func (s CustomOrderStatus) String() string {
	return string(s)
}

func (s *CustomOrderStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	status := CustomOrderStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("%w: custom order status %q", ErrInvalidStatus, raw)
	}
	*s = status
	return nil
}

func (s CustomOrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: custom order status %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

func (r *Role) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	role := Role(raw)
	if !role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidStatus, raw)
	}
	*r = role
	return nil
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidStatus, string(r))
	}
	return string(r), nil
}

func scanString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("%w: null value", ErrInvalidStatus)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidStatus, value)
	}
}

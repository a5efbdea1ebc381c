package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by point lookups when the row does not exist.
var ErrNotFound = errors.New("record not found")

// Store groups the repositories that must share one transaction.
type Store interface {
	Stones() StoneRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	CustomOrders() CustomOrderRepository
	Employees() EmployeeRepository
	Customers() CustomerRepository
	Accounts() AccountRepository

	// WithTransaction runs fn against a transaction-scoped Store. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Stones() StoneRepository             { return NewStoneRepository(s.db) }
func (s *store) Orders() OrderRepository             { return NewOrderRepository(s.db) }
func (s *store) OrderItems() OrderItemRepository     { return NewOrderItemRepository(s.db) }
func (s *store) CustomOrders() CustomOrderRepository { return NewCustomOrderRepository(s.db) }
func (s *store) Employees() EmployeeRepository       { return NewEmployeeRepository(s.db) }
func (s *store) Customers() CustomerRepository       { return NewCustomerRepository(s.db) }
func (s *store) Accounts() AccountRepository         { return NewAccountRepository(s.db) }

func (s *store) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stone_sales/internal/models"
	"stone_sales/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EmployeeInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Salary   decimal.Decimal `json:"salary"`
	HireDate time.Time       `json:"hire_date"`
}

type EmployeeService interface {
	Create(ctx context.Context, input EmployeeInput) (*models.Employee, error)
	Get(ctx context.Context, id uint) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, id uint, input EmployeeInput) (*models.Employee, error)
	// Remove deletes the employee and clears it from every order it was
	// assigned to, completed ones included. Orders are never deleted.
	Remove(ctx context.Context, id uint) error
}

type employeeService struct {
	deps Dependencies
}

func NewEmployeeService(deps Dependencies) EmployeeService {
	return &employeeService{deps: deps.withDefaults()}
}

func (s *employeeService) Create(ctx context.Context, input EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(input); err != nil {
		return nil, err
	}

	employee := &models.Employee{
		Name:     strings.TrimSpace(input.Name),
		Email:    input.Email,
		Phone:    input.Phone,
		Salary:   input.Salary,
		HireDate: input.HireDate,
	}
	if employee.HireDate.IsZero() {
		employee.HireDate = s.deps.now()
	}
	if err := s.deps.Store.Employees().Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	s.deps.Logger.Info("employee created", zap.Uint("employee_id", employee.ID))
	return employee, nil
}

func (s *employeeService) Get(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.deps.Store.Employees().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee %d", id)
	}
	return employee, nil
}

func (s *employeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.deps.Store.Employees().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, nil
}

func (s *employeeService) Update(ctx context.Context, id uint, input EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(input); err != nil {
		return nil, err
	}

	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	employee.Name = strings.TrimSpace(input.Name)
	employee.Email = input.Email
	employee.Phone = input.Phone
	employee.Salary = input.Salary
	if !input.HireDate.IsZero() {
		employee.HireDate = input.HireDate
	}

	if err := s.deps.Store.Employees().Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee %d: %w", id, err)
	}
	return employee, nil
}

func (s *employeeService) Remove(ctx context.Context, id uint) error {
	var unassigned int64
	err := s.deps.Store.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		unassigned, err = tx.Orders().UnassignEmployee(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to unassign orders of employee %d: %w", id, err)
		}
		if err := tx.Employees().Delete(ctx, id); err != nil {
			return notFound(err, "employee %d", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Logger.Info("employee removed", zap.Uint("employee_id", id), zap.Int64("unassigned_orders", unassigned))
	return nil
}

func validateEmployee(input EmployeeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: employee name is required", ErrInvalidInput)
	}
	if input.Salary.IsNegative() {
		return fmt.Errorf("%w: salary must not be negative", ErrInvalidInput)
	}
	return nil
}

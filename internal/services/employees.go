package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
	"github.com/atrule/invoicing/internal/validation"
)

// EmployeeService manages employees and the designation reference table.
type EmployeeService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{db: db, log: logger.WithComponent("employee")}
}

type EmployeeInput struct {
	EmployeeName  string
	DesignationID uint
	HourlyRate    decimal.Decimal
}

func (in EmployeeInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("employee_name", in.EmployeeName, v)
	validation.PositiveInt("designation_id", int(in.DesignationID), v)
	validation.NonNegative("hourly_rate", in.HourlyRate, v)
	return v
}

func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return nil, &ValidationError{Field: field, Message: message}
	}
	var designation models.Designation
	if err := s.db.WithContext(ctx).First(&designation, in.DesignationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "designation", ID: in.DesignationID}
		}
		return nil, &TransientStoreError{Op: "create employee", Err: err}
	}
	employee := &models.Employee{
		EmployeeName:  in.EmployeeName,
		DesignationID: in.DesignationID,
		HourlyRate:    in.HourlyRate,
	}
	if err := s.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, &TransientStoreError{Op: "create employee", Err: err}
	}
	s.log.Info().Uint("employee_id", employee.ID).Msg("employee created")
	return employee, nil
}

func (s *EmployeeService) Update(ctx context.Context, employeeID uint, in EmployeeInput) error {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return &ValidationError{Field: field, Message: message}
	}
	var employee models.Employee
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "employee", ID: employeeID}
		}
		return &TransientStoreError{Op: "update employee", Err: err}
	}
	employee.EmployeeName = in.EmployeeName
	employee.DesignationID = in.DesignationID
	employee.HourlyRate = in.HourlyRate
	if err := s.db.WithContext(ctx).Save(&employee).Error; err != nil {
		return &TransientStoreError{Op: "update employee", Err: err}
	}
	return nil
}

func (s *EmployeeService) GetByID(ctx context.Context, employeeID uint) (*models.Employee, error) {
	var employee models.Employee
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("Designation").
		First(&employee, employeeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "employee", ID: employeeID}
		}
		return nil, &TransientStoreError{Op: "get employee", Err: err}
	}
	return &employee, nil
}

func (s *EmployeeService) List(ctx context.Context, includeDeleted bool) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.WithContext(ctx).Scopes(store.Visibility(includeDeleted)).
		Preload("Designation").
		Order("employee_name").Find(&employees).Error
	if err != nil {
		return nil, &TransientStoreError{Op: "list employees", Err: err}
	}
	return employees, nil
}

func (s *EmployeeService) Delete(ctx context.Context, employeeID uint) error {
	var employee models.Employee
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "employee", ID: employeeID}
		}
		return &TransientStoreError{Op: "delete employee", Err: err}
	}
	if err := s.db.WithContext(ctx).Model(&employee).Update("is_deleted", true).Error; err != nil {
		return &TransientStoreError{Op: "delete employee", Err: err}
	}
	return nil
}

// Designations lists the job-title reference table.
func (s *EmployeeService) Designations(ctx context.Context) ([]models.Designation, error) {
	var designations []models.Designation
	if err := s.db.WithContext(ctx).Order("id").Find(&designations).Error; err != nil {
		return nil, &TransientStoreError{Op: "list designations", Err: err}
	}
	return designations, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
	"github.com/atrule/invoicing/internal/validation"
)

// ResourceService manages staffing assignments linking employees, clients
// and owner profiles.
type ResourceService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{db: db, log: logger.WithComponent("resource")}
}

type ResourceInput struct {
	ResourceName   string
	ClientID       uint
	EmployeeID     uint
	OwnerProfileID uint
	CommittedHours decimal.Decimal
	Recurrence     models.Recurrence
	IsActive       bool
}

func (in ResourceInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("resource_name", in.ResourceName, v)
	validation.PositiveInt("client_id", int(in.ClientID), v)
	validation.PositiveInt("employee_id", int(in.EmployeeID), v)
	validation.PositiveInt("owner_profile_id", int(in.OwnerProfileID), v)
	validation.NonNegative("committed_hours", in.CommittedHours, v)
	return v
}

// checkLinks verifies the three referenced rows exist and are live.
func (s *ResourceService) checkLinks(ctx context.Context, in ResourceInput) error {
	var client models.Client
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&client, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: in.ClientID}
		}
		return err
	}
	var employee models.Employee
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&employee, in.EmployeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "employee", ID: in.EmployeeID}
		}
		return err
	}
	var owner models.OwnerProfile
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&owner, in.OwnerProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "owner profile", ID: in.OwnerProfileID}
		}
		return err
	}
	return nil
}

func (s *ResourceService) Create(ctx context.Context, in ResourceInput) (*models.Resource, error) {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return nil, &ValidationError{Field: field, Message: message}
	}
	if err := s.checkLinks(ctx, in); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &TransientStoreError{Op: "create resource", Err: err}
	}
	recurrence := in.Recurrence
	if recurrence == "" {
		recurrence = models.RecurrenceMonthly
	}
	resource := &models.Resource{
		ResourceName:   in.ResourceName,
		ClientID:       in.ClientID,
		EmployeeID:     in.EmployeeID,
		OwnerProfileID: in.OwnerProfileID,
		CommittedHours: in.CommittedHours,
		Recurrence:     recurrence,
		IsActive:       in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(resource).Error; err != nil {
		return nil, &TransientStoreError{Op: "create resource", Err: err}
	}
	s.log.Info().Uint("resource_id", resource.ID).Uint("client_id", in.ClientID).Msg("resource created")
	return resource, nil
}

func (s *ResourceService) Update(ctx context.Context, resourceID uint, in ResourceInput) error {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return &ValidationError{Field: field, Message: message}
	}
	var resource models.Resource
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "resource", ID: resourceID}
		}
		return &TransientStoreError{Op: "update resource", Err: err}
	}
	if err := s.checkLinks(ctx, in); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &TransientStoreError{Op: "update resource", Err: err}
	}
	now := time.Now().UTC()
	resource.ResourceName = in.ResourceName
	resource.ClientID = in.ClientID
	resource.EmployeeID = in.EmployeeID
	resource.OwnerProfileID = in.OwnerProfileID
	resource.CommittedHours = in.CommittedHours
	if in.Recurrence != "" {
		resource.Recurrence = in.Recurrence
	}
	resource.IsActive = in.IsActive
	resource.UpdatedAt = &now
	if err := s.db.WithContext(ctx).Save(&resource).Error; err != nil {
		return &TransientStoreError{Op: "update resource", Err: err}
	}
	return nil
}

func (s *ResourceService) GetByID(ctx context.Context, resourceID uint) (*models.Resource, error) {
	var resource models.Resource
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("Client").
		Preload("Employee.Designation").
		Preload("OwnerProfile.CountryCurrency").
		First(&resource, resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "resource", ID: resourceID}
		}
		return nil, &TransientStoreError{Op: "get resource", Err: err}
	}
	return &resource, nil
}

// List returns resources, optionally narrowed to one client.
func (s *ResourceService) List(ctx context.Context, clientID uint, includeDeleted bool) ([]models.Resource, error) {
	q := s.db.WithContext(ctx).Scopes(store.Visibility(includeDeleted)).
		Preload("Employee.Designation").
		Preload("OwnerProfile")
	if clientID > 0 {
		q = q.Where("client_id = ?", clientID)
	}
	var resources []models.Resource
	if err := q.Order("resource_name").Find(&resources).Error; err != nil {
		return nil, &TransientStoreError{Op: "list resources", Err: err}
	}
	return resources, nil
}

// Delete soft-deletes a resource. Invoice items keep referencing it; their
// joins resolve through administrative reads.
func (s *ResourceService) Delete(ctx context.Context, resourceID uint) error {
	var resource models.Resource
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "resource", ID: resourceID}
		}
		return &TransientStoreError{Op: "delete resource", Err: err}
	}
	if err := s.db.WithContext(ctx).Model(&resource).Update("is_deleted", true).Error; err != nil {
		return &TransientStoreError{Op: "delete resource", Err: err}
	}
	s.log.Info().Uint("resource_id", resourceID).Msg("resource deleted")
	return nil
}

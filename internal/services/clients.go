package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
	"github.com/atrule/invoicing/internal/validation"
)

// ClientService manages clients, their activity status and employee links.
type ClientService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db, log: logger.WithComponent("client")}
}

type ClientInput struct {
	Name               string
	Email              string
	Address            string
	PhoneNumber        string
	CountryCurrencyID  uint
	CustomCurrency     string
	InvoiceSeriesStart int
}

func (in ClientInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.PositiveInt("country_currency_id", int(in.CountryCurrencyID), v)
	return v
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return nil, &ValidationError{Field: field, Message: message}
	}
	client := models.NewClient(in.Name, in.Email, in.CountryCurrencyID)
	client.Address = in.Address
	client.PhoneNumber = in.PhoneNumber
	client.CustomCurrency = in.CustomCurrency
	if in.InvoiceSeriesStart > 0 {
		client.InvoiceSeriesStart = in.InvoiceSeriesStart
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return err
		}
		// Every client starts active.
		return tx.Create(&models.ActiveClient{ClientID: client.ID, IsActive: true}).Error
	})
	if err != nil {
		return nil, &TransientStoreError{Op: "create client", Err: err}
	}
	s.log.Info().Uint("client_id", client.ID).Str("name", client.Name).Msg("client created")
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, clientID uint, in ClientInput) error {
	if v := in.validate(); !v.Empty() {
		field, message := v.First()
		return &ValidationError{Field: field, Message: message}
	}
	var client models.Client
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: clientID}
		}
		return &TransientStoreError{Op: "update client", Err: err}
	}
	client.Name = in.Name
	client.Email = in.Email
	client.Address = in.Address
	client.PhoneNumber = in.PhoneNumber
	client.CountryCurrencyID = in.CountryCurrencyID
	client.CustomCurrency = in.CustomCurrency
	if in.InvoiceSeriesStart > 0 {
		client.InvoiceSeriesStart = in.InvoiceSeriesStart
	}
	if err := s.db.WithContext(ctx).Save(&client).Error; err != nil {
		return &TransientStoreError{Op: "update client", Err: err}
	}
	return nil
}

func (s *ClientService) GetByID(ctx context.Context, clientID uint) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("CountryCurrency").
		Preload("ActiveClient").
		Preload("Resources", "is_deleted = ?", false).
		First(&client, clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "client", ID: clientID}
		}
		return nil, &TransientStoreError{Op: "get client", Err: err}
	}
	return &client, nil
}

func (s *ClientService) List(ctx context.Context, includeDeleted bool) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Scopes(store.Visibility(includeDeleted)).
		Preload("CountryCurrency").
		Preload("ActiveClient").
		Order("name").Find(&clients).Error
	if err != nil {
		return nil, &TransientStoreError{Op: "list clients", Err: err}
	}
	return clients, nil
}

// Delete soft-deletes a client. The client's invoices and resources are
// queued alongside it, and the batch's protection rule reverts them, so
// only the client row is flagged and its history stays queryable through
// administrative views.
func (s *ClientService) Delete(ctx context.Context, clientID uint) error {
	var client models.Client
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("Invoices", "is_deleted = ?", false).
		Preload("Resources", "is_deleted = ?", false).
		First(&client, clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: clientID}
		}
		return &TransientStoreError{Op: "delete client", Err: err}
	}

	batch := &store.DeleteBatch{}
	batch.Queue(&client)
	for i := range client.Invoices {
		batch.Queue(&client.Invoices[i])
	}
	for i := range client.Resources {
		batch.Queue(&client.Resources[i])
	}
	reverted, err := batch.Apply(ctx, s.db)
	if err != nil {
		return &TransientStoreError{Op: "delete client", Err: err}
	}
	s.log.Info().Uint("client_id", clientID).Int("kept", len(reverted)).Msg("client deleted")
	return nil
}

// SetActive flips the client's activity status, creating the status record
// when the client predates it.
func (s *ClientService) SetActive(ctx context.Context, clientID uint, active bool) error {
	var client models.Client
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: clientID}
		}
		return &TransientStoreError{Op: "set client active", Err: err}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var status models.ActiveClient
		err := tx.Where("client_id = ?", clientID).First(&status).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.ActiveClient{ClientID: clientID, IsActive: active}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&status).Update("is_active", active).Error
	})
	if err != nil {
		return &TransientStoreError{Op: "set client active", Err: err}
	}
	return nil
}

// LinkEmployee associates an employee with a client. Linking twice is a
// no-op.
func (s *ClientService) LinkEmployee(ctx context.Context, clientID, employeeID uint) error {
	var client models.Client
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "client", ID: clientID}
		}
		return &TransientStoreError{Op: "link employee", Err: err}
	}
	var employee models.Employee
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "employee", ID: employeeID}
		}
		return &TransientStoreError{Op: "link employee", Err: err}
	}
	link := models.ClientEmployee{ClientID: clientID, EmployeeID: employeeID}
	err := s.db.WithContext(ctx).Where(link).FirstOrCreate(&link).Error
	if err != nil {
		return &TransientStoreError{Op: "link employee", Err: err}
	}
	return nil
}

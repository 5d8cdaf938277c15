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

// OwnerService manages owner profiles and their bank accounts.
type OwnerService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewOwnerService(db *gorm.DB) *OwnerService {
	return &OwnerService{db: db, log: logger.WithComponent("owner")}
}

type OwnerInput struct {
	OwnerName         string
	BillingEmail      string
	PhoneNumber       string
	BillingAddress    string
	CountryCurrencyID uint
	CustomCurrency    string
	Logo              []byte
}

func (s *OwnerService) Create(ctx context.Context, in OwnerInput) (*models.OwnerProfile, error) {
	v := validation.Violations{}
	validation.Required("owner_name", in.OwnerName, v)
	validation.PositiveInt("country_currency_id", int(in.CountryCurrencyID), v)
	if !v.Empty() {
		field, message := v.First()
		return nil, &ValidationError{Field: field, Message: message}
	}
	owner := &models.OwnerProfile{
		OwnerName:         in.OwnerName,
		BillingEmail:      in.BillingEmail,
		PhoneNumber:       in.PhoneNumber,
		BillingAddress:    in.BillingAddress,
		CountryCurrencyID: in.CountryCurrencyID,
		CustomCurrency:    in.CustomCurrency,
		Logo:              in.Logo,
	}
	if err := s.db.WithContext(ctx).Create(owner).Error; err != nil {
		return nil, &TransientStoreError{Op: "create owner profile", Err: err}
	}
	s.log.Info().Uint("owner_id", owner.ID).Str("name", owner.OwnerName).Msg("owner profile created")
	return owner, nil
}

func (s *OwnerService) Update(ctx context.Context, ownerID uint, in OwnerInput) error {
	var owner models.OwnerProfile
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "owner profile", ID: ownerID}
		}
		return &TransientStoreError{Op: "update owner profile", Err: err}
	}
	owner.OwnerName = in.OwnerName
	owner.BillingEmail = in.BillingEmail
	owner.PhoneNumber = in.PhoneNumber
	owner.BillingAddress = in.BillingAddress
	owner.CountryCurrencyID = in.CountryCurrencyID
	owner.CustomCurrency = in.CustomCurrency
	if in.Logo != nil {
		owner.Logo = in.Logo
	}
	if err := s.db.WithContext(ctx).Save(&owner).Error; err != nil {
		return &TransientStoreError{Op: "update owner profile", Err: err}
	}
	return nil
}

func (s *OwnerService) GetByID(ctx context.Context, ownerID uint) (*models.OwnerProfile, error) {
	var owner models.OwnerProfile
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("CountryCurrency").
		Preload("BankAccounts", "is_deleted = ?", false).
		First(&owner, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "owner profile", ID: ownerID}
		}
		return nil, &TransientStoreError{Op: "get owner profile", Err: err}
	}
	return &owner, nil
}

func (s *OwnerService) List(ctx context.Context, includeDeleted bool) ([]models.OwnerProfile, error) {
	var owners []models.OwnerProfile
	err := s.db.WithContext(ctx).Scopes(store.Visibility(includeDeleted)).
		Preload("CountryCurrency").
		Order("owner_name").Find(&owners).Error
	if err != nil {
		return nil, &TransientStoreError{Op: "list owner profiles", Err: err}
	}
	return owners, nil
}

func (s *OwnerService) Delete(ctx context.Context, ownerID uint) error {
	var owner models.OwnerProfile
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "owner profile", ID: ownerID}
		}
		return &TransientStoreError{Op: "delete owner profile", Err: err}
	}
	if err := s.db.WithContext(ctx).Model(&owner).Update("is_deleted", true).Error; err != nil {
		return &TransientStoreError{Op: "delete owner profile", Err: err}
	}
	return nil
}

type BankAccountInput struct {
	OwnerProfileID uint
	Label          string
	AccountNumber  string
	CurrencyID     uint

	BankName     string
	AccountTitle string
	IBAN         string
	SwiftCode    string
	SortCode     string
	BranchCode   string

	ReceivingPaymentMethod string
	PaymentInstructions    string
	CountryID              *uint

	IsDefault bool
}

// AddBankAccount creates a bank account under an owner profile. When the
// account is flagged as default it displaces any existing default for the
// same (owner, currency) pair in the same transaction.
func (s *OwnerService) AddBankAccount(ctx context.Context, in BankAccountInput) (*models.OwnerBankAccount, error) {
	v := validation.Violations{}
	validation.Required("label", in.Label, v)
	validation.Required("account_number", in.AccountNumber, v)
	validation.PositiveInt("owner_profile_id", int(in.OwnerProfileID), v)
	validation.PositiveInt("currency_id", int(in.CurrencyID), v)
	if !v.Empty() {
		field, message := v.First()
		return nil, &ValidationError{Field: field, Message: message}
	}

	account := &models.OwnerBankAccount{
		OwnerProfileID:         in.OwnerProfileID,
		Label:                  in.Label,
		AccountNumber:          in.AccountNumber,
		CurrencyID:             in.CurrencyID,
		BankName:               in.BankName,
		AccountTitle:           in.AccountTitle,
		IBAN:                   in.IBAN,
		SwiftCode:              in.SwiftCode,
		SortCode:               in.SortCode,
		BranchCode:             in.BranchCode,
		ReceivingPaymentMethod: in.ReceivingPaymentMethod,
		PaymentInstructions:    in.PaymentInstructions,
		CountryID:              in.CountryID,
		IsDefault:              in.IsDefault,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.OwnerProfile
		if err := tx.Scopes(store.Active).First(&owner, in.OwnerProfileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "owner profile", ID: in.OwnerProfileID}
			}
			return err
		}
		if in.IsDefault {
			if err := unsetDefaults(tx, in.OwnerProfileID, in.CurrencyID); err != nil {
				return err
			}
		}
		return tx.Create(account).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &TransientStoreError{Op: "add bank account", Err: err}
	}
	return account, nil
}

// SetDefaultBankAccount promotes one account to be the default for its
// owner and currency. The previous default is demoted in the same
// transaction, preserving the at-most-one invariant at every commit point.
func (s *OwnerService) SetDefaultBankAccount(ctx context.Context, accountID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.OwnerBankAccount
		err := tx.Scopes(store.Active).First(&account, accountID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "bank account", ID: accountID}
			}
			return err
		}
		if err := unsetDefaults(tx, account.OwnerProfileID, account.CurrencyID); err != nil {
			return err
		}
		return tx.Model(&account).Update("is_default", true).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &TransientStoreError{Op: "set default bank account", Err: err}
	}
	s.log.Info().Uint("bank_account_id", accountID).Msg("default bank account changed")
	return nil
}

func unsetDefaults(tx *gorm.DB, ownerID, currencyID uint) error {
	return tx.Model(&models.OwnerBankAccount{}).
		Where("owner_profile_id = ? AND currency_id = ? AND is_default = ?", ownerID, currencyID, true).
		Update("is_default", false).Error
}

// DefaultBankAccount returns the default account for an owner and currency,
// or NotFoundError when none is flagged.
func (s *OwnerService) DefaultBankAccount(ctx context.Context, ownerID, currencyID uint) (*models.OwnerBankAccount, error) {
	var account models.OwnerBankAccount
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Where("owner_profile_id = ? AND currency_id = ? AND is_default = ?", ownerID, currencyID, true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "bank account", ID: 0}
		}
		return nil, &TransientStoreError{Op: "default bank account", Err: err}
	}
	return &account, nil
}

// DeleteBankAccount soft-deletes an account. A deleted default leaves the
// pair with no default until another account is promoted.
func (s *OwnerService) DeleteBankAccount(ctx context.Context, accountID uint) error {
	var account models.OwnerBankAccount
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "bank account", ID: accountID}
		}
		return &TransientStoreError{Op: "delete bank account", Err: err}
	}
	err := s.db.WithContext(ctx).Model(&account).Updates(map[string]any{
		"is_deleted": true,
		"is_default": false,
	}).Error
	if err != nil {
		return &TransientStoreError{Op: "delete bank account", Err: err}
	}
	return nil
}

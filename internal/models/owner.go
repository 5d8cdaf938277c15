package models

import "time"

// OwnerProfile is the invoicing party: the business entity that owns the
// billing relationship for a resource's hours. One system can hold several.
type OwnerProfile struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OwnerName      string `gorm:"size:255;not null" json:"owner_name"`
	BillingEmail   string `gorm:"size:255" json:"billing_email"`
	PhoneNumber    string `gorm:"size:50" json:"phone_number,omitempty"`
	BillingAddress string `gorm:"size:500" json:"billing_address"`

	CountryCurrencyID uint             `gorm:"not null" json:"country_currency_id"`
	CountryCurrency   *CountryCurrency `gorm:"foreignKey:CountryCurrencyID" json:"country_currency,omitempty"`
	CustomCurrency    string           `gorm:"size:50" json:"custom_currency,omitempty"`

	Logo []byte `json:"-"`

	Resources    []Resource         `gorm:"foreignKey:OwnerProfileID" json:"-"`
	BankAccounts []OwnerBankAccount `gorm:"foreignKey:OwnerProfileID;constraint:OnDelete:CASCADE" json:"bank_accounts,omitempty"`

	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`
}

func (o *OwnerProfile) MarkDeleted() { o.IsDeleted = true }
func (o *OwnerProfile) Deleted() bool { return o.IsDeleted }

// OwnerBankAccount holds the payment coordinates rendered on invoices.
// At most one account per (owner, currency) pair may be the default.
type OwnerBankAccount struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerProfileID uint          `gorm:"index;not null" json:"owner_profile_id"`
	OwnerProfile   *OwnerProfile `gorm:"foreignKey:OwnerProfileID" json:"-"`

	Label         string `gorm:"size:100;not null" json:"label"`
	AccountNumber string `gorm:"size:50;not null" json:"account_number"`

	CurrencyID      uint             `gorm:"index;not null" json:"currency_id"`
	CountryCurrency *CountryCurrency `gorm:"foreignKey:CurrencyID" json:"country_currency,omitempty"`

	BankName     string `gorm:"size:100" json:"bank_name,omitempty"`
	AccountTitle string `gorm:"size:100" json:"account_title,omitempty"`
	IBAN         string `gorm:"size:50" json:"iban,omitempty"`
	SwiftCode    string `gorm:"size:20" json:"swift_code,omitempty"`
	SortCode     string `gorm:"size:20" json:"sort_code,omitempty"`
	BranchCode   string `gorm:"size:50" json:"branch_code,omitempty"`

	ReceivingPaymentMethod string `gorm:"size:100" json:"receiving_payment_method,omitempty"`
	PaymentInstructions    string `gorm:"size:500" json:"payment_instructions,omitempty"`

	// CountryID is the country the bank sits in, which may differ from the
	// currency's own country.
	CountryID   *uint            `json:"country_id,omitempty"`
	BankCountry *CountryCurrency `gorm:"foreignKey:CountryID" json:"bank_country,omitempty"`

	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *OwnerBankAccount) MarkDeleted() { b.IsDeleted = true }
func (b *OwnerBankAccount) Deleted() bool { return b.IsDeleted }

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

// EmailStatusNotSent and EmailStatusSent track whether the invoice document
// was delivered to the client.
const (
	EmailStatusNotSent = "Not Sent"
	EmailStatusSent    = "Sent"
)

// Variation is the billing mode of a line item.
type Variation string

const (
	VariationHourly Variation = "hourly"
	VariationFixed  Variation = "fixed"
)

// Label returns the display form of the variation.
func (v Variation) Label() string {
	if v == VariationFixed {
		return "Fixed"
	}
	return "Hourly"
}

// Invoice is a bill issued to a client for consumed resources over a date
// range. TotalAmount aggregates item totals in the target currency;
// RemainingAmount is always TotalAmount minus PaidAmount except for the
// deliberate override to zero on full payment.
type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	InvoiceDate time.Time  `json:"invoice_date"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"remaining_amount"`

	// ConversionRate converts the owner's native currency into the target
	// currency the invoice is displayed in. 1 means no conversion.
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1" json:"conversion_rate"`

	CountryCurrencyID uint             `gorm:"not null" json:"country_currency_id"`
	CountryCurrency   *CountryCurrency `gorm:"foreignKey:CountryCurrencyID" json:"country_currency,omitempty"`

	Status      InvoiceStatus `gorm:"size:20;default:'pending'" json:"status"`
	EmailStatus string        `gorm:"size:20;default:'Not Sent'" json:"email_status"`

	BankAccountID         uint   `json:"bank_account_id"`
	PaymentCommunication  string `gorm:"type:text" json:"payment_communication,omitempty"`
	PaymentGuidelineImage []byte `json:"-"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInvoice builds an invoice with the documented defaults: Pending,
// email not sent, zero amounts, conversion rate 1.
func NewInvoice(clientID uint) *Invoice {
	return &Invoice{
		ClientID:        clientID,
		InvoiceDate:     time.Now().UTC(),
		TotalAmount:     decimal.Zero,
		PaidAmount:      decimal.Zero,
		RemainingAmount: decimal.Zero,
		ConversionRate:  decimal.NewFromInt(1),
		Status:          InvoiceStatusPending,
		EmailStatus:     EmailStatusNotSent,
	}
}

func (i *Invoice) MarkDeleted() { i.IsDeleted = true }
func (i *Invoice) Deleted() bool { return i.IsDeleted }

// OwningClientID implements ClientOwned: invoices survive client deletion.
func (i *Invoice) OwningClientID() uint { return i.ClientID }

// IsPaid reports whether the invoice has been fully settled.
func (i *Invoice) IsPaid() bool { return i.Status == InvoiceStatusPaid }

// Number derives the display number from the client's series start and the
// invoice id: INV/<year>/<series+id>, zero-padded to six digits.
func (i *Invoice) Number(seriesStart int) string {
	return i.numberWithPrefix("INV", seriesStart)
}

// ReceiptNumber is the receipt variant of Number.
func (i *Invoice) ReceiptNumber(seriesStart int) string {
	return i.numberWithPrefix("RCPT", seriesStart)
}

func (i *Invoice) numberWithPrefix(prefix string, seriesStart int) string {
	return fmt.Sprintf("%s/%d/%06d", prefix, i.InvoiceDate.Year(), seriesStart+int(i.ID))
}

// ItemTotal sums the live line item totals. Soft-deleted items are excluded.
func (i *Invoice) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		if item.IsDeleted {
			continue
		}
		total = total.Add(item.TotalAmount)
	}
	return total
}

// InvoiceItem is one billable line on an invoice, referencing the resource
// that was consumed. Hourly lines carry hours and a rate; fixed lines carry
// only the already-converted flat amount.
type InvoiceItem struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	ResourceID uint      `gorm:"index;not null" json:"resource_id"`
	Resource   *Resource `gorm:"foreignKey:ResourceID;constraint:OnDelete:RESTRICT" json:"resource,omitempty"`

	Variation     Variation       `gorm:"size:20;not null" json:"variation"`
	ConsumedHours decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"consumed_hours"`
	RatePerHour   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"rate_per_hour"`

	// TotalAmount is stored already converted into the invoice's target
	// currency.
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`

	PurposeCode string `gorm:"size:255" json:"purpose_code,omitempty"`

	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`
}

func (it *InvoiceItem) MarkDeleted() { it.IsDeleted = true }
func (it *InvoiceItem) Deleted() bool { return it.IsDeleted }

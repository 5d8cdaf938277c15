package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a contracting party that consumes staffed resources and receives
// invoices. Its invoice numbering is derived from InvoiceSeriesStart plus the
// invoice id, never stored.
type Client struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255" json:"email"`
	Address     string `gorm:"size:500" json:"address"`
	PhoneNumber string `gorm:"size:50" json:"phone_number"`

	CountryCurrencyID uint             `gorm:"not null" json:"country_currency_id"`
	CountryCurrency   *CountryCurrency `gorm:"foreignKey:CountryCurrencyID" json:"country_currency,omitempty"`
	CustomCurrency    string           `gorm:"size:50" json:"custom_currency,omitempty"`

	// DueDate is the default due date applied to new invoices for this client.
	DueDate time.Time `json:"due_date"`

	ClientIdentifier string `gorm:"size:64;uniqueIndex" json:"client_identifier"`

	// InvoiceSeriesStart is the per-client starting number of the invoice
	// series; displayed numbers are InvoiceSeriesStart + invoice id.
	InvoiceSeriesStart int `gorm:"not null;default:1" json:"invoice_series_start"`

	ActiveClient *ActiveClient    `gorm:"foreignKey:ClientID" json:"active_client,omitempty"`
	Resources    []Resource       `gorm:"foreignKey:ClientID" json:"resources,omitempty"`
	Invoices     []Invoice        `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
	Employees    []ClientEmployee `gorm:"foreignKey:ClientID" json:"-"`
	Receipts     []Receipt        `gorm:"foreignKey:ClientID" json:"-"`

	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClient builds a client with explicit defaults rather than relying on
// storage-layer defaulting.
func NewClient(name, email string, currencyID uint) *Client {
	return &Client{
		Name:               name,
		Email:              email,
		CountryCurrencyID:  currencyID,
		ClientIdentifier:   uuid.NewString(),
		InvoiceSeriesStart: 1,
		DueDate:            time.Now().UTC(),
	}
}

func (c *Client) MarkDeleted() { c.IsDeleted = true }
func (c *Client) Deleted() bool { return c.IsDeleted }

// ActiveClient is the zero-or-one active/inactive status record a client owns.
type ActiveClient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"uniqueIndex;not null" json:"client_id"`
	Client    *Client   `gorm:"foreignKey:ClientID" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientEmployee cross-links a client with an employee.
type ClientEmployee struct {
	ClientID   uint      `gorm:"primaryKey" json:"client_id"`
	EmployeeID uint      `gorm:"primaryKey" json:"employee_id"`
	Client     *Client   `gorm:"foreignKey:ClientID" json:"-"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt records the settlement of a paid invoice. Its links are loosely
// coupled: both client and currency are nullable and not cascade-protected.
type Receipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GeneratedDate time.Time       `json:"generated_date"`
	PaidDate      time.Time       `json:"paid_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	Status        string          `gorm:"size:50" json:"status"`

	CurrencyID      *uint            `json:"currency_id,omitempty"`
	CountryCurrency *CountryCurrency `gorm:"foreignKey:CurrencyID" json:"country_currency,omitempty"`

	ClientID *uint   `json:"client_id,omitempty"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"-"`

	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`
}

func (r *Receipt) MarkDeleted() { r.IsDeleted = true }
func (r *Receipt) Deleted() bool { return r.IsDeleted }

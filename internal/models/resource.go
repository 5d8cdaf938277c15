package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurrence is the billing cadence of a resource assignment.
type Recurrence string

const (
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceWeekly  Recurrence = "weekly"
)

// Label returns the display form of the recurrence.
func (r Recurrence) Label() string {
	if r == RecurrenceWeekly {
		return "Weekly"
	}
	return "Monthly"
}

// Resource is a staffing assignment: one employee billed to one client under
// one owner profile's currency and banking identity. Invoice items reference
// resources and restrict their deletion while referenced.
type Resource struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ResourceName string `gorm:"size:255;not null" json:"resource_name"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	EmployeeID uint      `gorm:"index;not null" json:"employee_id"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`

	OwnerProfileID uint          `gorm:"index;not null" json:"owner_profile_id"`
	OwnerProfile   *OwnerProfile `gorm:"foreignKey:OwnerProfileID" json:"owner_profile,omitempty"`

	CommittedHours decimal.Decimal `gorm:"type:decimal(18,2)" json:"committed_hours"`
	Recurrence     Recurrence      `gorm:"size:20;default:'monthly'" json:"recurrence"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`

	IsDeleted bool       `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (r *Resource) MarkDeleted() { r.IsDeleted = true }
func (r *Resource) Deleted() bool { return r.IsDeleted }

// OwningClientID implements ClientOwned: resources survive client deletion.
func (r *Resource) OwningClientID() uint { return r.ClientID }

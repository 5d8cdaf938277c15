package models

import "github.com/shopspring/decimal"

// Designation is a job-title reference record.
type Designation struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:designation;size:100" json:"name"`
}

// Employee is a staffed worker assigned to clients through resources.
type Employee struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	EmployeeName  string          `gorm:"size:255;not null" json:"employee_name"`
	DesignationID uint            `gorm:"not null" json:"designation_id"`
	Designation   *Designation    `gorm:"foreignKey:DesignationID" json:"designation,omitempty"`
	HourlyRate    decimal.Decimal `gorm:"type:decimal(18,2)" json:"hourly_rate"`

	Resources []Resource `gorm:"foreignKey:EmployeeID" json:"resources,omitempty"`

	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`
}

func (e *Employee) MarkDeleted() { e.IsDeleted = true }
func (e *Employee) Deleted() bool { return e.IsDeleted }

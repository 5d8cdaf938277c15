package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atrule/invoicing/internal/db"
	"github.com/atrule/invoicing/internal/models"
)

// openTestDB returns an isolated in-memory database migrated to the full
// schema. The shared cache keeps the database alive across the pooled
// connections of one test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

// fixture is the minimal working graph: two currencies, one owner billing
// in USD, one client billed in GBP, one staffed resource between them.
type fixture struct {
	usd      models.CountryCurrency
	gbp      models.CountryCurrency
	owner    models.OwnerProfile
	client   models.Client
	employee models.Employee
	resource models.Resource
}

func seedGraph(t *testing.T, conn *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		usd: models.CountryCurrency{CountryName: "United States", CurrencyName: "US Dollar", Symbol: "$", CurrencyCode: "USD"},
		gbp: models.CountryCurrency{CountryName: "United Kingdom", CurrencyName: "Pound Sterling", Symbol: "£", CurrencyCode: "GBP"},
	}
	mustCreate(t, conn, &f.usd)
	mustCreate(t, conn, &f.gbp)

	designation := models.Designation{Name: "Software Engineer"}
	mustCreate(t, conn, &designation)

	f.employee = models.Employee{
		EmployeeName:  "Dana Reeve",
		DesignationID: designation.ID,
		HourlyRate:    decimal.NewFromInt(50),
	}
	mustCreate(t, conn, &f.employee)

	f.owner = models.OwnerProfile{
		OwnerName:         "Northwind Consulting",
		BillingEmail:      "billing@northwind.test",
		BillingAddress:    "1 Harbor Way",
		CountryCurrencyID: f.usd.ID,
	}
	mustCreate(t, conn, &f.owner)

	f.client = *models.NewClient("Acme Ltd", "accounts@acme.test", f.gbp.ID)
	f.client.Address = "22 King Street, London"
	mustCreate(t, conn, &f.client)

	f.resource = models.Resource{
		ResourceName:   "Backend Development",
		ClientID:       f.client.ID,
		EmployeeID:     f.employee.ID,
		OwnerProfileID: f.owner.ID,
		CommittedHours: decimal.NewFromInt(160),
		Recurrence:     models.RecurrenceMonthly,
		IsActive:       true,
	}
	mustCreate(t, conn, &f.resource)
	return f
}

func mustCreate(t *testing.T, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

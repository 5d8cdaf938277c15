package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewInvoiceDefaults(t *testing.T) {
	inv := NewInvoice(7)
	if inv.ClientID != 7 {
		t.Fatalf("client id = %d, want 7", inv.ClientID)
	}
	if inv.Status != InvoiceStatusPending {
		t.Errorf("status = %q, want pending", inv.Status)
	}
	if inv.EmailStatus != EmailStatusNotSent {
		t.Errorf("email status = %q, want %q", inv.EmailStatus, EmailStatusNotSent)
	}
	if !inv.TotalAmount.IsZero() || !inv.PaidAmount.IsZero() || !inv.RemainingAmount.IsZero() {
		t.Errorf("amounts not zero: %s %s %s", inv.TotalAmount, inv.PaidAmount, inv.RemainingAmount)
	}
	if !inv.ConversionRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("conversion rate = %s, want 1", inv.ConversionRate)
	}
	if inv.InvoiceDate.IsZero() {
		t.Error("invoice date not set")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("Acme", "billing@acme.test", 3)
	if c.ClientIdentifier == "" {
		t.Error("client identifier not generated")
	}
	if c.InvoiceSeriesStart != 1 {
		t.Errorf("series start = %d, want 1", c.InvoiceSeriesStart)
	}
	if c.CountryCurrencyID != 3 {
		t.Errorf("currency id = %d, want 3", c.CountryCurrencyID)
	}
}

func TestInvoiceNumberFormat(t *testing.T) {
	inv := &Invoice{ID: 42, InvoiceDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	if got := inv.Number(1000); got != "INV/2025/001042" {
		t.Errorf("Number = %q", got)
	}
	if got := inv.ReceiptNumber(1000); got != "RCPT/2025/001042" {
		t.Errorf("ReceiptNumber = %q", got)
	}
}

func TestItemTotalSkipsDeleted(t *testing.T) {
	inv := &Invoice{Items: []InvoiceItem{
		{TotalAmount: decimal.NewFromInt(100)},
		{TotalAmount: decimal.NewFromInt(50), IsDeleted: true},
		{TotalAmount: decimal.NewFromInt(25)},
	}}
	if got := inv.ItemTotal(); !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("ItemTotal = %s, want 125", got)
	}
}

func TestLabels(t *testing.T) {
	if VariationFixed.Label() != "Fixed" || VariationHourly.Label() != "Hourly" {
		t.Error("variation labels wrong")
	}
	if RecurrenceWeekly.Label() != "Weekly" || RecurrenceMonthly.Label() != "Monthly" {
		t.Error("recurrence labels wrong")
	}
}

func TestSeedCurrenciesShape(t *testing.T) {
	seed := SeedCurrencies()
	if len(seed) != 20 {
		t.Fatalf("seed length = %d, want 20", len(seed))
	}
	if seed[0].CurrencyCode != "USD" || seed[0].Symbol != "$" {
		t.Errorf("first row = %+v, want USD/$", seed[0])
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atrule/invoicing/internal/models"
)

func TestCreateHourlyInvoiceConvertsAmounts(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID:       f.client.ID,
		ConversionRate: dec(t, "0.8"),
		Items: []LineInput{{
			ResourceID:    f.resource.ID,
			Variation:     models.VariationHourly,
			ConsumedHours: decimal.NewFromInt(40),
			RatePerHour:   decimal.NewFromInt(50),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	invoice, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// 40 hours at $50 converted at 0.8.
	if !invoice.TotalAmount.Equal(dec(t, "1600")) {
		t.Errorf("total = %s, want 1600", invoice.TotalAmount)
	}
	if !invoice.RemainingAmount.Equal(dec(t, "1600")) {
		t.Errorf("remaining = %s, want 1600", invoice.RemainingAmount)
	}
	if !invoice.PaidAmount.IsZero() {
		t.Errorf("paid = %s, want 0", invoice.PaidAmount)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Errorf("status = %q, want pending", invoice.Status)
	}
	if invoice.EmailStatus != models.EmailStatusNotSent {
		t.Errorf("email status = %q", invoice.EmailStatus)
	}
	// No explicit currency: falls back to the billing owner's USD.
	if invoice.CountryCurrencyID != f.usd.ID {
		t.Errorf("currency = %d, want owner currency %d", invoice.CountryCurrencyID, f.usd.ID)
	}
	if len(invoice.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(invoice.Items))
	}
	if !invoice.Items[0].TotalAmount.Equal(dec(t, "1600")) {
		t.Errorf("item total = %s, want 1600", invoice.Items[0].TotalAmount)
	}
}

func TestCreateFixedInvoiceZeroesHourlyFields(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID:       f.client.ID,
		ConversionRate: dec(t, "2"),
		Items: []LineInput{{
			ResourceID: f.resource.ID,
			Variation:  models.VariationFixed,
			// Hours and rate on a fixed line are ignored and stored as zero.
			ConsumedHours: decimal.NewFromInt(99),
			RatePerHour:   decimal.NewFromInt(99),
			Amount:        decimal.NewFromInt(500),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	invoice, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	item := invoice.Items[0]
	if !item.ConsumedHours.IsZero() || !item.RatePerHour.IsZero() {
		t.Errorf("hourly fields not zeroed: %s %s", item.ConsumedHours, item.RatePerHour)
	}
	if !item.TotalAmount.Equal(dec(t, "1000")) {
		t.Errorf("item total = %s, want 1000", item.TotalAmount)
	}
}

func TestCreateCurrencyOverride(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID:        f.client.ID,
		OwnerCurrencyID: &f.gbp.ID,
		Items: []LineInput{{
			ResourceID:    f.resource.ID,
			Variation:     models.VariationHourly,
			ConsumedHours: decimal.NewFromInt(1),
			RatePerHour:   decimal.NewFromInt(1),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	invoice, _ := svc.GetByID(context.Background(), id)
	if invoice.CountryCurrencyID != f.gbp.ID {
		t.Errorf("currency = %d, want override %d", invoice.CountryCurrencyID, f.gbp.ID)
	}
}

func TestCreateRejectsUnknownClient(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: 9999,
		Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationHourly}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreateRejectsForeignResource(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	other := models.NewClient("Other Co", "other@test", f.gbp.ID)
	mustCreate(t, conn, other)

	// The resource belongs to f.client, not to other.
	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: other.ID,
		Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationHourly}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{ClientID: f.client.ID})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestUpdateReturnsFalseForMissingInvoice(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	ok := svc.Update(context.Background(), UpdateInvoiceInput{
		InvoiceID:      12345,
		ClientID:       f.client.ID,
		ResourceID:     f.resource.ID,
		OwnerProfileID: f.owner.ID,
		Variation:      models.VariationHourly,
	})
	if ok {
		t.Fatal("update of missing invoice reported success")
	}
}

func TestUpdateReassignsResourceOwner(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	secondOwner := models.OwnerProfile{
		OwnerName:         "Contoso Holdings",
		CountryCurrencyID: f.gbp.ID,
	}
	mustCreate(t, conn, &secondOwner)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []LineInput{{
			ResourceID:    f.resource.ID,
			Variation:     models.VariationHourly,
			ConsumedHours: decimal.NewFromInt(10),
			RatePerHour:   decimal.NewFromInt(50),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok := svc.Update(context.Background(), UpdateInvoiceInput{
		InvoiceID:      id,
		ClientID:       f.client.ID,
		ResourceID:     f.resource.ID,
		OwnerProfileID: secondOwner.ID,
		Variation:      models.VariationHourly,
		ConsumedHours:  decimal.NewFromInt(20),
		RatePerHour:    decimal.NewFromInt(50),
	})
	if !ok {
		t.Fatal("update failed")
	}

	// Updating the invoice moves the resource under the selected owner.
	var resource models.Resource
	if err := conn.First(&resource, f.resource.ID).Error; err != nil {
		t.Fatalf("reload resource: %v", err)
	}
	if resource.OwnerProfileID != secondOwner.ID {
		t.Errorf("resource owner = %d, want %d", resource.OwnerProfileID, secondOwner.ID)
	}

	// And the invoice currency follows the new owner.
	invoice, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if invoice.CountryCurrencyID != f.gbp.ID {
		t.Errorf("currency = %d, want new owner's %d", invoice.CountryCurrencyID, f.gbp.ID)
	}
	if !invoice.TotalAmount.Equal(dec(t, "1000")) {
		t.Errorf("total = %s, want 1000", invoice.TotalAmount)
	}
}

func TestRecomputeAmountsIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []LineInput{{
			ResourceID:    f.resource.ID,
			Variation:     models.VariationHourly,
			ConsumedHours: decimal.NewFromInt(8),
			RatePerHour:   decimal.NewFromInt(100),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.RecomputeAmounts(context.Background(), id); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}
	invoice, _ := svc.GetByID(context.Background(), id)
	if !invoice.TotalAmount.Equal(dec(t, "800")) || !invoice.RemainingAmount.Equal(dec(t, "800")) {
		t.Errorf("amounts = %s/%s, want 800/800", invoice.TotalAmount, invoice.RemainingAmount)
	}
}

func TestMarkPaidSettlesAndIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []LineInput{{
			ResourceID:    f.resource.ID,
			Variation:     models.VariationFixed,
			Amount:        decimal.NewFromInt(750),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.MarkPaid(context.Background(), id); err != nil {
			t.Fatalf("mark paid %d: %v", i, err)
		}
	}
	invoice, _ := svc.GetByID(context.Background(), id)
	if invoice.Status != models.InvoiceStatusPaid {
		t.Errorf("status = %q, want paid", invoice.Status)
	}
	if !invoice.PaidAmount.Equal(invoice.TotalAmount) {
		t.Errorf("paid = %s, total = %s", invoice.PaidAmount, invoice.TotalAmount)
	}
	if !invoice.RemainingAmount.IsZero() {
		t.Errorf("remaining = %s, want 0", invoice.RemainingAmount)
	}
}

func TestMarkPaidUnknownInvoice(t *testing.T) {
	conn := openTestDB(t)
	seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	if err := svc.MarkPaid(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDeleteHidesInvoiceFromDefaultReads(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	id, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationFixed, Amount: decimal.NewFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v, want not found", err)
	}
	all, err := svc.List(context.Background(), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || !all[0].IsDeleted {
		t.Errorf("administrative list = %d rows, flagged=%v", len(all), len(all) == 1 && all[0].IsDeleted)
	}
}

func TestListFilteredByMonthAndClient(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	march := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	june := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	for _, end := range []time.Time{march, june} {
		end := end
		_, err := svc.Create(context.Background(), CreateInvoiceInput{
			ClientID: f.client.ID,
			EndDate:  &end,
			Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationFixed, Amount: decimal.NewFromInt(100)}},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := svc.ListFiltered(context.Background(), InvoiceFilter{Month: 3, ClientID: f.client.ID})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("filtered = %d rows, want 1", len(got))
	}
	if got[0].InvoiceDate.Month() != time.March {
		t.Errorf("month = %s, want March", got[0].InvoiceDate.Month())
	}
}

func TestDashboardAggregates(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewInvoiceService(conn)

	first, err := svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationFixed, Amount: decimal.NewFromInt(300)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Create(context.Background(), CreateInvoiceInput{
		ClientID: f.client.ID,
		Items:    []LineInput{{ResourceID: f.resource.ID, Variation: models.VariationFixed, Amount: decimal.NewFromInt(200)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.MarkPaid(context.Background(), first); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	if got := svc.TotalRevenue(context.Background()); !got.Equal(dec(t, "300")) {
		t.Errorf("revenue = %s, want 300", got)
	}
	if got := svc.UnpaidAmount(context.Background()); !got.Equal(dec(t, "200")) {
		t.Errorf("unpaid = %s, want 200", got)
	}
}

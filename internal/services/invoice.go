package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
)

// InvoiceService is the invoice computation engine and lifecycle state
// machine. Every operation opens its own unit of work against the shared
// connection pool; multi-statement mutations run in a single transaction
// confined to persistence calls.
type InvoiceService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, log: logger.WithComponent("invoice")}
}

// LineInput is one billable line request. For hourly lines ConsumedHours and
// RatePerHour apply; for fixed lines only Amount applies.
type LineInput struct {
	ResourceID    uint
	Variation     models.Variation
	ConsumedHours decimal.Decimal
	RatePerHour   decimal.Decimal
	Amount        decimal.Decimal
	PurposeCode   string
}

type CreateInvoiceInput struct {
	ClientID  uint
	Items     []LineInput
	StartDate *time.Time
	EndDate   *time.Time
	DueDate   *time.Time

	// ConversionRate defaults to 1 when zero.
	ConversionRate decimal.Decimal

	// OwnerCurrencyID overrides the invoice currency; when nil the currency
	// of the first item's resource's owner is used, then the client's own.
	OwnerCurrencyID *uint

	BankAccountID         uint
	PaymentCommunication  string
	PaymentGuidelineImage []byte
}

type UpdateInvoiceInput struct {
	InvoiceID uint
	ClientID  uint

	ResourceID    uint
	Variation     models.Variation
	ConsumedHours decimal.Decimal
	RatePerHour   decimal.Decimal
	Amount        decimal.Decimal
	PurposeCode   string

	StartDate *time.Time
	EndDate   *time.Time
	DueDate   *time.Time

	ConversionRate  decimal.Decimal
	OwnerCurrencyID *uint

	BankAccountID         uint
	PaymentCommunication  string
	PaymentGuidelineImage []byte

	// OwnerProfileID reassigns the owning profile of the line's resource.
	OwnerProfileID uint
}

// InvoiceFilter narrows ListFiltered results. Zero values mean "no filter".
type InvoiceFilter struct {
	Date     *time.Time
	Month    int
	ClientID uint
}

var one = decimal.NewFromInt(1)

func orOne(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return one
	}
	return rate
}

// lineTotal normalizes a line by variation and returns the converted total
// along with the normalized hours and rate.
func lineTotal(in LineInput, rate decimal.Decimal) (hours, perHour, total decimal.Decimal) {
	if in.Variation == models.VariationHourly {
		hours = in.ConsumedHours
		perHour = in.RatePerHour
		total = hours.Mul(perHour).Mul(rate).Round(2)
		return
	}
	hours = decimal.Zero
	perHour = decimal.Zero
	total = in.Amount.Mul(rate).Round(2)
	return
}

// Create computes and persists an invoice with its line items atomically and
// returns the new invoice id. Missing or soft-deleted client or resource
// rows abort with NotFoundError; nothing is written on failure.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (uint, error) {
	if len(in.Items) == 0 {
		return 0, &ValidationError{Field: "items", Message: "at least one line item is required"}
	}
	for _, item := range in.Items {
		if item.ConsumedHours.IsNegative() {
			return 0, &ValidationError{Field: "consumed_hours", Message: "must not be negative"}
		}
		if item.RatePerHour.IsNegative() {
			return 0, &ValidationError{Field: "rate_per_hour", Message: "must not be negative"}
		}
	}
	rate := orOne(in.ConversionRate)

	var invoiceID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Scopes(store.Active).First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "client", ID: in.ClientID}
			}
			return err
		}

		items := make([]models.InvoiceItem, 0, len(in.Items))
		var firstResource *models.Resource
		for _, line := range in.Items {
			var resource models.Resource
			err := tx.Scopes(store.Active).
				Preload("OwnerProfile").
				Where("client_id = ?", in.ClientID).
				First(&resource, line.ResourceID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "resource", ID: line.ResourceID}
				}
				return err
			}
			if firstResource == nil {
				r := resource
				firstResource = &r
			}
			hours, perHour, total := lineTotal(line, rate)
			items = append(items, models.InvoiceItem{
				ResourceID:    line.ResourceID,
				Variation:     line.Variation,
				ConsumedHours: hours,
				RatePerHour:   perHour,
				TotalAmount:   total,
				PurposeCode:   line.PurposeCode,
			})
		}

		// Currency resolution: explicit override, else the billing owner's
		// currency, else the client's own.
		currencyID := client.CountryCurrencyID
		if in.OwnerCurrencyID != nil {
			currencyID = *in.OwnerCurrencyID
		} else if firstResource != nil && firstResource.OwnerProfile != nil {
			currencyID = firstResource.OwnerProfile.CountryCurrencyID
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.TotalAmount)
		}

		invoice := models.NewInvoice(in.ClientID)
		if in.EndDate != nil {
			invoice.InvoiceDate = in.EndDate.Truncate(24 * time.Hour)
		}
		invoice.StartDate = in.StartDate
		invoice.EndDate = in.EndDate
		invoice.DueDate = in.DueDate
		invoice.ConversionRate = rate
		invoice.CountryCurrencyID = currencyID
		invoice.TotalAmount = total
		invoice.RemainingAmount = total
		invoice.BankAccountID = in.BankAccountID
		invoice.PaymentCommunication = in.PaymentCommunication
		invoice.PaymentGuidelineImage = in.PaymentGuidelineImage

		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Uint("client_id", in.ClientID).Msg("invoice creation failed")
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			return 0, err
		}
		return 0, &TransientStoreError{Op: "create invoice", Err: err}
	}
	s.log.Info().Uint("invoice_id", invoiceID).Uint("client_id", in.ClientID).Msg("invoice saved")
	return invoiceID, nil
}

// Update mutates an existing invoice and its (assumed singular) line item,
// creating the item when absent, and recomputes the totals. As a deliberate
// side effect it reassigns the resource's owning profile to
// in.OwnerProfileID. Unlike Create it reports failure by returning false
// rather than an error.
func (s *InvoiceService) Update(ctx context.Context, in UpdateInvoiceInput) bool {
	rate := orOne(in.ConversionRate)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.Scopes(store.Active).Preload("Items", "is_deleted = ?", false).
			First(&invoice, in.InvoiceID).Error
		if err != nil {
			return err
		}

		var resource models.Resource
		if err := tx.First(&resource, in.ResourceID).Error; err != nil {
			return err
		}
		resource.OwnerProfileID = in.OwnerProfileID
		if err := tx.Model(&resource).Update("owner_profile_id", in.OwnerProfileID).Error; err != nil {
			return err
		}

		currencyID := invoice.CountryCurrencyID
		if in.OwnerCurrencyID != nil {
			currencyID = *in.OwnerCurrencyID
		} else {
			var owner models.OwnerProfile
			if err := tx.First(&owner, resource.OwnerProfileID).Error; err == nil {
				currencyID = owner.CountryCurrencyID
			}
		}

		invoice.ClientID = in.ClientID
		invoice.StartDate = in.StartDate
		invoice.EndDate = in.EndDate
		invoice.DueDate = in.DueDate
		invoice.ConversionRate = rate
		invoice.CountryCurrencyID = currencyID
		invoice.BankAccountID = in.BankAccountID
		invoice.PaymentCommunication = in.PaymentCommunication
		invoice.PaymentGuidelineImage = in.PaymentGuidelineImage

		hours, perHour, total := lineTotal(LineInput{
			Variation:     in.Variation,
			ConsumedHours: in.ConsumedHours,
			RatePerHour:   in.RatePerHour,
			Amount:        in.Amount,
		}, rate)

		if len(invoice.Items) == 0 {
			item := models.InvoiceItem{
				InvoiceID:     invoice.ID,
				ResourceID:    in.ResourceID,
				Variation:     in.Variation,
				PurposeCode:   in.PurposeCode,
				ConsumedHours: hours,
				RatePerHour:   perHour,
				TotalAmount:   total,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			invoice.Items = append(invoice.Items, item)
		} else {
			item := &invoice.Items[0]
			item.ResourceID = in.ResourceID
			item.Variation = in.Variation
			item.PurposeCode = in.PurposeCode
			item.ConsumedHours = hours
			item.RatePerHour = perHour
			item.TotalAmount = total
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		invoice.TotalAmount = invoice.ItemTotal()
		invoice.RemainingAmount = invoice.TotalAmount.Sub(invoice.PaidAmount)
		return tx.Omit("Items").Save(&invoice).Error
	})
	if err != nil {
		s.log.Error().Err(err).Uint("invoice_id", in.InvoiceID).Msg("invoice update failed")
		return false
	}
	s.log.Info().Uint("invoice_id", in.InvoiceID).Msg("invoice updated")
	return true
}

// RecomputeAmounts re-derives TotalAmount and RemainingAmount strictly from
// the current live line items and PaidAmount. Idempotent.
func (s *InvoiceService) RecomputeAmounts(ctx context.Context, invoiceID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.Scopes(store.Active).Preload("Items", "is_deleted = ?", false).
			First(&invoice, invoiceID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "invoice", ID: invoiceID}
			}
			return err
		}
		total := invoice.ItemTotal()
		return tx.Model(&invoice).Updates(map[string]any{
			"total_amount":     total,
			"remaining_amount": total.Sub(invoice.PaidAmount),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &TransientStoreError{Op: "recompute amounts", Err: err}
	}
	return nil
}

// MarkPaid settles the invoice in full: Status becomes Paid, PaidAmount is
// set to TotalAmount and RemainingAmount to zero. Calling it twice yields
// the same final state.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uint) error {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return &TransientStoreError{Op: "mark paid", Err: err}
	}
	err := s.db.WithContext(ctx).Model(&invoice).Updates(map[string]any{
		"status":           models.InvoiceStatusPaid,
		"paid_amount":      invoice.TotalAmount,
		"remaining_amount": decimal.Zero,
	}).Error
	if err != nil {
		return &TransientStoreError{Op: "mark paid", Err: err}
	}
	s.log.Info().Uint("invoice_id", invoiceID).Msg("invoice marked as paid")
	return nil
}

// Delete soft-deletes the invoice. Status and amounts are untouched; line
// items keep their own flags and disappear transitively with the parent.
// A missing invoice is not an error.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID uint) error {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Scopes(store.Active).First(&invoice, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Uint("invoice_id", invoiceID).Msg("invoice not found for deletion")
			return nil
		}
		return &TransientStoreError{Op: "delete invoice", Err: err}
	}
	if err := s.db.WithContext(ctx).Model(&invoice).Update("is_deleted", true).Error; err != nil {
		return &TransientStoreError{Op: "delete invoice", Err: err}
	}
	s.log.Info().Uint("invoice_id", invoiceID).Msg("invoice deleted")
	return nil
}

func invoicePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client.CountryCurrency").
		Preload("CountryCurrency").
		Preload("Items", "is_deleted = ?", false).
		Preload("Items.Resource.Employee.Designation").
		Preload("Items.Resource.OwnerProfile.CountryCurrency")
}

// GetByID loads an invoice with its full relation graph, excluding
// soft-deleted invoices.
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := invoicePreloads(s.db.WithContext(ctx)).Scopes(store.Active).
		First(&invoice, invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return nil, &TransientStoreError{Op: "get invoice", Err: err}
	}
	return &invoice, nil
}

// List returns invoices with their relation graphs. Soft-deleted invoices
// are excluded unless includeDeleted is set (administrative views).
func (s *InvoiceService) List(ctx context.Context, includeDeleted bool) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := invoicePreloads(s.db.WithContext(ctx)).Scopes(store.Visibility(includeDeleted)).
		Order("id DESC").Find(&invoices).Error
	if err != nil {
		return nil, &TransientStoreError{Op: "list invoices", Err: err}
	}
	return invoices, nil
}

// ListFiltered returns non-deleted invoices narrowed by exact date, month of
// the invoice date, and client.
func (s *InvoiceService) ListFiltered(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("Client.CountryCurrency").
		Preload("Items", "is_deleted = ?", false).
		Preload("Items.Resource")
	if f.Date != nil {
		day := f.Date.Truncate(24 * time.Hour)
		q = q.Where("invoice_date >= ? AND invoice_date < ?", day, day.Add(24*time.Hour))
	}
	if f.ClientID > 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	var invoices []models.Invoice
	if err := q.Order("id DESC").Find(&invoices).Error; err != nil {
		return nil, &TransientStoreError{Op: "filter invoices", Err: err}
	}
	// Month-of-year has no portable SQL form across the supported dialects;
	// applied here after the indexed filters.
	if f.Month >= 1 && f.Month <= 12 {
		filtered := invoices[:0]
		for _, inv := range invoices {
			if int(inv.InvoiceDate.Month()) == f.Month {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	return invoices, nil
}

// TotalRevenue sums PaidAmount across non-deleted invoices. Informational:
// store failures degrade to zero with a logged warning instead of
// propagating.
func (s *InvoiceService) TotalRevenue(ctx context.Context) decimal.Decimal {
	return s.sumColumn(ctx, "paid_amount")
}

// UnpaidAmount sums RemainingAmount across non-deleted invoices, degrading
// to zero on store failure.
func (s *InvoiceService) UnpaidAmount(ctx context.Context) decimal.Decimal {
	return s.sumColumn(ctx, "remaining_amount")
}

func (s *InvoiceService) sumColumn(ctx context.Context, column string) decimal.Decimal {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(store.Active).
		Select("COALESCE(SUM(" + column + "), 0)").Scan(&total).Error
	if err != nil {
		s.log.Warn().Err(err).Str("column", column).Msg("aggregate query failed, returning zero")
		return decimal.Zero
	}
	return total
}

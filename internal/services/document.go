package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
)

// Renderer turns assembled document data into PDF bytes.
type Renderer interface {
	Render(data *DocumentData) ([]byte, error)
}

// DocumentService assembles the renderable view of an invoice or receipt
// and delegates the drawing to a Renderer. Assembly also reconciles the
// stored invoice totals with the freshly computed grand total.
type DocumentService struct {
	db       *gorm.DB
	renderer Renderer
	log      zerolog.Logger
}

func NewDocumentService(db *gorm.DB, renderer Renderer) *DocumentService {
	return &DocumentService{db: db, renderer: renderer, log: logger.WithComponent("document")}
}

// DocumentData is everything a renderer needs, already formatted. Amount
// strings carry their currency symbols; blank optional fields are omitted
// from PaymentRows.
type DocumentData struct {
	Receipt bool
	Number  string
	Date    string
	DueDate string

	OwnerName    string
	OwnerAddress string
	OwnerEmail   string
	OwnerPhone   string
	OwnerLogo    []byte

	ClientName    string
	ClientAddress string

	PaymentRows []PaymentRow

	Lines []DocumentLine

	TotalLabel string
	TotalText  string

	PaymentCommunication string
	GuidelineImage       []byte

	// Confirmation is present only in receipt mode.
	Confirmation *PaymentConfirmation

	FooterText string
}

type PaymentRow struct {
	Label string
	Value string
}

// DocumentLine is one rendered invoice row. Calculation holds the full
// conversion narrative shown beneath the description.
type DocumentLine struct {
	Description string
	Calculation string
	HoursText   string
	RateText    string
	Subtotal    string
	Purpose     string
}

type PaymentConfirmation struct {
	PaymentDate   string
	Method        string
	AmountText    string
	InvoiceNumber string
}

// DefaultPurpose is used when a line item does not carry its own purpose
// code.
const DefaultPurpose = "Software Consultancy Services"

// Generate renders the invoice (or its receipt when receipt is true) and
// persists the recomputed totals: TotalAmount becomes the grand total and
// RemainingAmount becomes zero for receipts or grand total minus PaidAmount
// otherwise. An invoice with no live line items yields EmptyInvoiceError.
func (s *DocumentService) Generate(ctx context.Context, invoiceID uint, receipt bool) ([]byte, error) {
	var invoice models.Invoice
	err := invoicePreloads(s.db.WithContext(ctx)).Scopes(store.Active).
		First(&invoice, invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return nil, &TransientStoreError{Op: "load invoice for document", Err: err}
	}

	data, grandTotal, err := s.assemble(ctx, &invoice, receipt)
	if err != nil {
		return nil, err
	}

	out, err := s.renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render document for invoice %d: %w", invoiceID, err)
	}

	remaining := grandTotal.Sub(invoice.PaidAmount)
	if receipt {
		remaining = decimal.Zero
	}
	err = s.db.WithContext(ctx).Model(&invoice).Updates(map[string]any{
		"total_amount":     grandTotal,
		"remaining_amount": remaining,
	}).Error
	if err != nil {
		return nil, &TransientStoreError{Op: "persist document totals", Err: err}
	}
	s.log.Info().Uint("invoice_id", invoiceID).Bool("receipt", receipt).
		Str("total", grandTotal.StringFixed(2)).Msg("document generated")
	return out, nil
}

func (s *DocumentService) assemble(ctx context.Context, invoice *models.Invoice, receipt bool) (*DocumentData, decimal.Decimal, error) {
	items := make([]models.InvoiceItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		if !item.IsDeleted {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, decimal.Zero, &EmptyInvoiceError{InvoiceID: invoice.ID}
	}

	conv := orOne(invoice.ConversionRate)

	var firstOwner *models.OwnerProfile
	if items[0].Resource != nil {
		firstOwner = items[0].Resource.OwnerProfile
	}

	// Owner-side currency: invoice currency, else the billing owner's, else
	// the dollar fallback. Target side comes from the client.
	ownerSymbol, ownerName := currencyOf(invoice.CountryCurrency)
	if invoice.CountryCurrency == nil && firstOwner != nil {
		ownerSymbol, ownerName = currencyOf(firstOwner.CountryCurrency)
	}
	targetSymbol, targetName := models.DefaultCurrencySymbol, models.DefaultCurrencyName
	if invoice.Client != nil {
		targetSymbol, targetName = currencyOf(invoice.Client.CountryCurrency)
	}

	lines := make([]DocumentLine, 0, len(items))
	grandTotal := decimal.Zero
	for _, item := range items {
		_, converted, narrative := lineCalculation(item, conv, ownerSymbol, ownerName, targetSymbol, targetName)
		grandTotal = grandTotal.Add(converted)

		subtotalSymbol := targetSymbol
		if conv.Equal(one) {
			subtotalSymbol = ownerSymbol
		}
		hoursText := "-"
		rateText := "-"
		if item.Variation == models.VariationHourly {
			hoursText = item.ConsumedHours.String()
			rateText = ownerSymbol + item.RatePerHour.StringFixed(2)
		}
		purpose := item.PurposeCode
		if purpose == "" {
			purpose = DefaultPurpose
		}
		lines = append(lines, DocumentLine{
			Description: lineDescription(item, invoice.DueDate),
			Calculation: narrative,
			HoursText:   hoursText,
			RateText:    rateText,
			Subtotal:    subtotalSymbol + converted.StringFixed(2),
			Purpose:     purpose,
		})
	}

	totalLabel := "Total Amount"
	totalSymbol := ownerSymbol
	if !conv.Equal(one) {
		totalLabel = fmt.Sprintf("Total Amount In (%s)", targetName)
		totalSymbol = targetSymbol
	}

	seriesStart := 1
	clientName, clientAddress := "", ""
	if invoice.Client != nil {
		seriesStart = invoice.Client.InvoiceSeriesStart
		clientName = invoice.Client.Name
		clientAddress = invoice.Client.Address
	}
	number := invoice.Number(seriesStart)
	if receipt {
		number = invoice.ReceiptNumber(seriesStart)
	}

	data := &DocumentData{
		Receipt:              receipt,
		Number:               number,
		Date:                 invoice.InvoiceDate.Format("02 Jan 2006"),
		DueDate:              formatDate(invoice.DueDate),
		ClientName:           clientName,
		ClientAddress:        clientAddress,
		Lines:                lines,
		TotalLabel:           totalLabel,
		TotalText:            totalSymbol + grandTotal.StringFixed(2),
		PaymentCommunication: invoice.PaymentCommunication,
		GuidelineImage:       invoice.PaymentGuidelineImage,
	}

	if firstOwner != nil {
		data.OwnerName = firstOwner.OwnerName
		data.OwnerAddress = firstOwner.BillingAddress
		data.OwnerEmail = firstOwner.BillingEmail
		data.OwnerPhone = firstOwner.PhoneNumber
		data.OwnerLogo = firstOwner.Logo
		data.FooterText = fmt.Sprintf("For questions about this document contact %s at %s.",
			firstOwner.OwnerName, firstOwner.BillingEmail)
	}

	data.PaymentRows = s.bankRows(ctx, invoice.BankAccountID, data.OwnerName)

	if receipt {
		data.Confirmation = &PaymentConfirmation{
			PaymentDate:   time.Now().UTC().Format("02 Jan 2006"),
			Method:        "Bank Transfer",
			AmountText:    totalSymbol + grandTotal.StringFixed(2),
			InvoiceNumber: invoice.Number(seriesStart),
		}
	}

	return data, grandTotal, nil
}

// bankRows loads the referenced bank account and emits only its non-blank
// fields. A missing account means no payment instruction block.
func (s *DocumentService) bankRows(ctx context.Context, accountID uint, ownerName string) []PaymentRow {
	if accountID == 0 {
		return nil
	}
	var account models.OwnerBankAccount
	err := s.db.WithContext(ctx).Scopes(store.Active).First(&account, accountID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Uint("bank_account_id", accountID).Msg("bank account lookup failed")
		}
		return nil
	}
	beneficiary := account.AccountTitle
	if beneficiary == "" {
		beneficiary = ownerName
	}
	candidates := []PaymentRow{
		{Label: "Bank Name", Value: account.BankName},
		{Label: "Account Number", Value: account.AccountNumber},
		{Label: "Sort Code", Value: account.SortCode},
		{Label: "IBAN", Value: account.IBAN},
		{Label: "Swift Code", Value: account.SwiftCode},
		{Label: "Beneficiary", Value: beneficiary},
	}
	rows := make([]PaymentRow, 0, len(candidates))
	for _, row := range candidates {
		if row.Value != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

func currencyOf(c *models.CountryCurrency) (symbol, name string) {
	if c == nil {
		return models.DefaultCurrencySymbol, models.DefaultCurrencyName
	}
	return c.Symbol, c.CurrencyName
}

// lineCalculation computes the owner-currency subtotal, the converted
// subtotal, and the conversion narrative for one line. Hourly lines derive
// the original from hours times rate; fixed lines carry the converted total
// already and back out the original by dividing by the rate.
//
// Rounding happens once, on the converted amount, mirroring how the item
// totals were stored: the grand total of a regenerated document must equal
// the invoice's stored TotalAmount. The original stays unrounded and is
// rounded only when formatted for the narrative.
func lineCalculation(item models.InvoiceItem, conv decimal.Decimal, ownerSym, ownerName, targetSym, targetName string) (original, converted decimal.Decimal, narrative string) {
	unity := conv.Equal(one)
	if item.Variation == models.VariationHourly {
		original = item.ConsumedHours.Mul(item.RatePerHour)
		converted = item.ConsumedHours.Mul(item.RatePerHour).Mul(conv).Round(2)
		if unity {
			narrative = fmt.Sprintf("Amount in %s: %s Hours × %s%s = %s%s",
				ownerName, item.ConsumedHours.String(), ownerSym, item.RatePerHour.StringFixed(2),
				ownerSym, converted.StringFixed(2))
			return
		}
		narrative = fmt.Sprintf(
			"Amount in %s: %s Hours × %s%s = %s%s\nConverted at 1 %s = %s %s\nAmount in %s: %s%s × %s = %s%s",
			ownerName, item.ConsumedHours.String(), ownerSym, item.RatePerHour.StringFixed(2),
			ownerSym, original.StringFixed(2),
			ownerName, conv.StringFixed(2), targetName,
			targetName, ownerSym, original.StringFixed(2), conv.StringFixed(2),
			targetSym, converted.StringFixed(2))
		return
	}

	converted = item.TotalAmount
	original = converted.Div(conv)
	if unity {
		narrative = fmt.Sprintf("Fixed Amount in %s: %s%s",
			ownerName, ownerSym, original.StringFixed(2))
		return
	}
	narrative = fmt.Sprintf(
		"Fixed Amount in %s: %s%s\nConverted at 1 %s = %s %s\nAmount in %s: %s%s × %s = %s%s",
		ownerName, ownerSym, original.StringFixed(2),
		ownerName, conv.StringFixed(2), targetName,
		targetName, ownerSym, original.StringFixed(2), conv.StringFixed(2),
		targetSym, converted.StringFixed(2))
	return
}

// lineDescription composes the row heading. The service month is the due
// date shifted back one month, so a June 1st due date bills May.
func lineDescription(item models.InvoiceItem, dueDate *time.Time) string {
	resourceName, employeeName, designation := "", "", ""
	recurrence := ""
	if item.Resource != nil {
		resourceName = item.Resource.ResourceName
		recurrence = item.Resource.Recurrence.Label()
		if item.Resource.Employee != nil {
			employeeName = item.Resource.Employee.EmployeeName
			if item.Resource.Employee.Designation != nil {
				designation = item.Resource.Employee.Designation.Name
			}
		}
	}
	month := "N/A"
	if dueDate != nil {
		month = dueDate.AddDate(0, -1, 0).Format("January 2006")
	}
	return fmt.Sprintf("%s - %s(%s)  - %s Contract - %s - %s",
		resourceName, employeeName, designation, item.Variation.Label(), recurrence, month)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("02 Jan 2006")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/mail"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/store"
)

// SendService runs the dispatch pipeline: generate the document, compose
// the message, deliver it, and record the outcome on the invoice.
type SendService struct {
	db        *gorm.DB
	documents *DocumentService
	sender    mail.Sender
	log       zerolog.Logger
}

func NewSendService(db *gorm.DB, documents *DocumentService, sender mail.Sender) *SendService {
	return &SendService{
		db:        db,
		documents: documents,
		sender:    sender,
		log:       logger.WithComponent("send"),
	}
}

// SendOptions shapes one dispatch. IncludeDocument controls whether the
// rendered PDF is attached; extra attachments ride along either way.
type SendOptions struct {
	Receipt         bool
	IncludeDocument bool
	CustomTemplate  string
	Extra           []mail.Attachment
}

// dueDateFallbackDays pads a missing due date from today.
const dueDateFallbackDays = 5

// Send dispatches the invoice (or receipt) to the client's billing email.
// On acknowledged delivery the invoice's EmailStatus flips to Sent; a
// receipt dispatch additionally records a Receipt row. The boolean reports
// whether the transport acknowledged delivery.
func (s *SendService) Send(ctx context.Context, invoiceID uint, opts SendOptions) (bool, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).Scopes(store.Active).
		Preload("Client").
		First(&invoice, invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &NotFoundError{Entity: "invoice", ID: invoiceID}
		}
		return false, &TransientStoreError{Op: "load invoice for send", Err: err}
	}
	if invoice.Client == nil || invoice.Client.Email == "" {
		return false, &ValidationError{Field: "client_email", Message: "client has no billing email"}
	}

	attachments := make([]mail.Attachment, 0, 1+len(opts.Extra))
	if opts.IncludeDocument {
		pdfBytes, err := s.documents.Generate(ctx, invoiceID, opts.Receipt)
		if err != nil {
			return false, err
		}
		filename := fmt.Sprintf("Invoice_%d.pdf", invoiceID)
		if opts.Receipt {
			filename = fmt.Sprintf("Receipt_%d.pdf", invoiceID)
		}
		attachments = append(attachments, mail.Attachment{Filename: filename, Content: pdfBytes})
	}
	attachments = append(attachments, opts.Extra...)

	dueDate := time.Now().UTC().AddDate(0, 0, dueDateFallbackDays)
	if invoice.DueDate != nil {
		dueDate = *invoice.DueDate
	}

	number := invoice.Number(invoice.Client.InvoiceSeriesStart)
	if opts.Receipt {
		number = invoice.ReceiptNumber(invoice.Client.InvoiceSeriesStart)
	}

	delivered, err := s.sender.Send(ctx, mail.Message{
		Recipient:     invoice.Client.Email,
		ClientName:    invoice.Client.Name,
		InvoiceNumber: number,
		DueDate:       dueDate,
		Receipt:       opts.Receipt,
		Template:      opts.CustomTemplate,
		Attachments:   attachments,
	})
	if err != nil {
		return false, fmt.Errorf("dispatch invoice %d: %w", invoiceID, err)
	}
	if !delivered {
		s.log.Warn().Uint("invoice_id", invoiceID).Msg("transport declined delivery")
		return false, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invoice).Update("email_status", models.EmailStatusSent).Error; err != nil {
			return err
		}
		if opts.Receipt {
			currencyID := invoice.CountryCurrencyID
			clientID := invoice.ClientID
			return tx.Create(&models.Receipt{
				GeneratedDate: invoice.InvoiceDate,
				PaidDate:      time.Now().UTC(),
				TotalAmount:   invoice.TotalAmount,
				Status:        string(models.InvoiceStatusPaid),
				CurrencyID:    &currencyID,
				ClientID:      &clientID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return true, &TransientStoreError{Op: "record dispatch", Err: err}
	}
	s.log.Info().Uint("invoice_id", invoiceID).Bool("receipt", opts.Receipt).Msg("document dispatched")
	return true, nil
}

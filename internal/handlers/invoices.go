package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atrule/invoicing/internal/httpx"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/services"
)

// InvoiceHandler exposes the invoice lifecycle over JSON.
type InvoiceHandler struct {
	invoices  *services.InvoiceService
	documents *services.DocumentService
	sender    *services.SendService
}

func NewInvoiceHandler(invoices *services.InvoiceService, documents *services.DocumentService, sender *services.SendService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, documents: documents, sender: sender}
}

type lineItemRequest struct {
	ResourceID    uint            `json:"resource_id"`
	Variation     string          `json:"variation"`
	ConsumedHours decimal.Decimal `json:"consumed_hours"`
	RatePerHour   decimal.Decimal `json:"rate_per_hour"`
	Amount        decimal.Decimal `json:"amount"`
	PurposeCode   string          `json:"purpose_code"`
}

type createInvoiceRequest struct {
	ClientID             uint              `json:"client_id"`
	Items                []lineItemRequest `json:"items"`
	StartDate            *time.Time        `json:"start_date"`
	EndDate              *time.Time        `json:"end_date"`
	DueDate              *time.Time        `json:"due_date"`
	ConversionRate       decimal.Decimal   `json:"conversion_rate"`
	OwnerCurrencyID      *uint             `json:"owner_currency_id"`
	BankAccountID        uint              `json:"bank_account_id"`
	PaymentCommunication string            `json:"payment_communication"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	in := services.CreateInvoiceInput{
		ClientID:             req.ClientID,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		DueDate:              req.DueDate,
		ConversionRate:       req.ConversionRate,
		OwnerCurrencyID:      req.OwnerCurrencyID,
		BankAccountID:        req.BankAccountID,
		PaymentCommunication: req.PaymentCommunication,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.LineInput{
			ResourceID:    item.ResourceID,
			Variation:     models.Variation(item.Variation),
			ConsumedHours: item.ConsumedHours,
			RatePerHour:   item.RatePerHour,
			Amount:        item.Amount,
			PurposeCode:   item.PurposeCode,
		})
	}
	id, err := h.invoices.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]uint{"id": id})
}

type updateInvoiceRequest struct {
	ClientID             uint            `json:"client_id"`
	ResourceID           uint            `json:"resource_id"`
	OwnerProfileID       uint            `json:"owner_profile_id"`
	Variation            string          `json:"variation"`
	ConsumedHours        decimal.Decimal `json:"consumed_hours"`
	RatePerHour          decimal.Decimal `json:"rate_per_hour"`
	Amount               decimal.Decimal `json:"amount"`
	PurposeCode          string          `json:"purpose_code"`
	StartDate            *time.Time      `json:"start_date"`
	EndDate              *time.Time      `json:"end_date"`
	DueDate              *time.Time      `json:"due_date"`
	ConversionRate       decimal.Decimal `json:"conversion_rate"`
	OwnerCurrencyID      *uint           `json:"owner_currency_id"`
	BankAccountID        uint            `json:"bank_account_id"`
	PaymentCommunication string          `json:"payment_communication"`
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	ok = h.invoices.Update(r.Context(), services.UpdateInvoiceInput{
		InvoiceID:            id,
		ClientID:             req.ClientID,
		ResourceID:           req.ResourceID,
		OwnerProfileID:       req.OwnerProfileID,
		Variation:            models.Variation(req.Variation),
		ConsumedHours:        req.ConsumedHours,
		RatePerHour:          req.RatePerHour,
		Amount:               req.Amount,
		PurposeCode:          req.PurposeCode,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		DueDate:              req.DueDate,
		ConversionRate:       req.ConversionRate,
		OwnerCurrencyID:      req.OwnerCurrencyID,
		BankAccountID:        req.BankAccountID,
		PaymentCommunication: req.PaymentCommunication,
	})
	if !ok {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	invoice, err := h.invoices.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := services.InvoiceFilter{}
	q := r.URL.Query()
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", raw)
			return
		}
		filter.Date = &parsed
	}
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_month", raw)
			return
		}
		filter.Month = month
	}
	if raw := q.Get("client_id"); raw != "" {
		clientID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", raw)
			return
		}
		filter.ClientID = uint(clientID)
	}

	var invoices []models.Invoice
	var err error
	if filter.Date != nil || filter.Month > 0 || filter.ClientID > 0 {
		invoices, err = h.invoices.ListFiltered(r.Context(), filter)
	} else {
		invoices, err = h.invoices.List(r.Context(), includeDeleted(r))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoices.MarkPaid(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(models.InvoiceStatusPaid)})
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Document streams the rendered PDF. ?receipt=true renders the receipt
// variant.
func (h *InvoiceHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	receipt := r.URL.Query().Get("receipt") == "true"
	out, err := h.documents.Generate(r.Context(), id, receipt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	name := fmt.Sprintf("Invoice_%d.pdf", id)
	if receipt {
		name = fmt.Sprintf("Receipt_%d.pdf", id)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

type sendRequest struct {
	Receipt        bool   `json:"receipt"`
	CustomTemplate string `json:"custom_template"`
}

func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req sendRequest
	if r.Body != nil {
		// An empty body means default options.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	delivered, err := h.sender.Send(r.Context(), id, services.SendOptions{
		Receipt:         req.Receipt,
		IncludeDocument: true,
		CustomTemplate:  req.CustomTemplate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !delivered {
		httpx.JSONError(w, http.StatusBadGateway, "delivery_declined", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"email_status": models.EmailStatusSent})
}

// Dashboard reports the paid and outstanding totals.
func (h *InvoiceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]decimal.Decimal{
		"total_revenue": h.invoices.TotalRevenue(r.Context()),
		"unpaid_amount": h.invoices.UnpaidAmount(r.Context()),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", raw)
		return 0, false
	}
	return uint(id), true
}

func includeDeleted(r *http.Request) bool {
	return r.URL.Query().Get("include_deleted") == "true"
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrValidation):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, services.ErrEmptyInvoice):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "empty_invoice", err.Error())
	case errors.Is(err, services.ErrTransientStore):
		httpx.JSONError(w, http.StatusServiceUnavailable, "store_unavailable", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

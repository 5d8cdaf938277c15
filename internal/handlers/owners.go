package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/atrule/invoicing/internal/httpx"
	"github.com/atrule/invoicing/internal/services"
)

type OwnerHandler struct {
	owners *services.OwnerService
}

func NewOwnerHandler(owners *services.OwnerService) *OwnerHandler {
	return &OwnerHandler{owners: owners}
}

type ownerRequest struct {
	OwnerName         string `json:"owner_name"`
	BillingEmail      string `json:"billing_email"`
	PhoneNumber       string `json:"phone_number"`
	BillingAddress    string `json:"billing_address"`
	CountryCurrencyID uint   `json:"country_currency_id"`
	CustomCurrency    string `json:"custom_currency"`
	Logo              []byte `json:"logo"`
}

func (req ownerRequest) toInput() services.OwnerInput {
	return services.OwnerInput{
		OwnerName:         req.OwnerName,
		BillingEmail:      req.BillingEmail,
		PhoneNumber:       req.PhoneNumber,
		BillingAddress:    req.BillingAddress,
		CountryCurrencyID: req.CountryCurrencyID,
		CustomCurrency:    req.CustomCurrency,
		Logo:              req.Logo,
	}
}

func (h *OwnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	owner, err := h.owners.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, owner)
}

func (h *OwnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.owners.Update(r.Context(), id, req.toInput()); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *OwnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	owner, err := h.owners.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owner)
}

func (h *OwnerHandler) List(w http.ResponseWriter, r *http.Request) {
	owners, err := h.owners.List(r.Context(), includeDeleted(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owners)
}

func (h *OwnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.owners.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type bankAccountRequest struct {
	Label                  string `json:"label"`
	AccountNumber          string `json:"account_number"`
	CurrencyID             uint   `json:"currency_id"`
	BankName               string `json:"bank_name"`
	AccountTitle           string `json:"account_title"`
	IBAN                   string `json:"iban"`
	SwiftCode              string `json:"swift_code"`
	SortCode               string `json:"sort_code"`
	BranchCode             string `json:"branch_code"`
	ReceivingPaymentMethod string `json:"receiving_payment_method"`
	PaymentInstructions    string `json:"payment_instructions"`
	CountryID              *uint  `json:"country_id"`
	IsDefault              bool   `json:"is_default"`
}

func (h *OwnerHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req bankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	account, err := h.owners.AddBankAccount(r.Context(), services.BankAccountInput{
		OwnerProfileID:         id,
		Label:                  req.Label,
		AccountNumber:          req.AccountNumber,
		CurrencyID:             req.CurrencyID,
		BankName:               req.BankName,
		AccountTitle:           req.AccountTitle,
		IBAN:                   req.IBAN,
		SwiftCode:              req.SwiftCode,
		SortCode:               req.SortCode,
		BranchCode:             req.BranchCode,
		ReceivingPaymentMethod: req.ReceivingPaymentMethod,
		PaymentInstructions:    req.PaymentInstructions,
		CountryID:              req.CountryID,
		IsDefault:              req.IsDefault,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *OwnerHandler) SetDefaultBankAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.owners.SetDefaultBankAccount(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"default": true})
}

func (h *OwnerHandler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.owners.DeleteBankAccount(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

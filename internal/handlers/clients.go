package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atrule/invoicing/internal/httpx"
	"github.com/atrule/invoicing/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type clientRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	PhoneNumber        string `json:"phone_number"`
	CountryCurrencyID  uint   `json:"country_currency_id"`
	CustomCurrency     string `json:"custom_currency"`
	InvoiceSeriesStart int    `json:"invoice_series_start"`
}

func (req clientRequest) toInput() services.ClientInput {
	return services.ClientInput{
		Name:               req.Name,
		Email:              req.Email,
		Address:            req.Address,
		PhoneNumber:        req.PhoneNumber,
		CountryCurrencyID:  req.CountryCurrencyID,
		CustomCurrency:     req.CustomCurrency,
		InvoiceSeriesStart: req.InvoiceSeriesStart,
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	client, err := h.clients.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.clients.Update(r.Context(), id, req.toInput()); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context(), includeDeleted(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *ClientHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.clients.SetActive(r.Context(), id, req.Active); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

func (h *ClientHandler) LinkEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	raw := r.PathValue("employeeID")
	employeeID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || employeeID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_employee_id", raw)
		return
	}
	if err := h.clients.LinkEmployee(r.Context(), id, uint(employeeID)); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"linked": true})
}

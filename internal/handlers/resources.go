package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/atrule/invoicing/internal/httpx"
	"github.com/atrule/invoicing/internal/models"
	"github.com/atrule/invoicing/internal/services"
)

type ResourceHandler struct {
	resources *services.ResourceService
}

func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

type resourceRequest struct {
	ResourceName   string          `json:"resource_name"`
	ClientID       uint            `json:"client_id"`
	EmployeeID     uint            `json:"employee_id"`
	OwnerProfileID uint            `json:"owner_profile_id"`
	CommittedHours decimal.Decimal `json:"committed_hours"`
	Recurrence     string          `json:"recurrence"`
	IsActive       bool            `json:"is_active"`
}

func (req resourceRequest) toInput() services.ResourceInput {
	return services.ResourceInput{
		ResourceName:   req.ResourceName,
		ClientID:       req.ClientID,
		EmployeeID:     req.EmployeeID,
		OwnerProfileID: req.OwnerProfileID,
		CommittedHours: req.CommittedHours,
		Recurrence:     models.Recurrence(req.Recurrence),
		IsActive:       req.IsActive,
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	resource, err := h.resources.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.resources.Update(r.Context(), id, req.toInput()); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resource, err := h.resources.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	var clientID uint
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", raw)
			return
		}
		clientID = uint(parsed)
	}
	resources, err := h.resources.List(r.Context(), clientID, includeDeleted(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resources)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.resources.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

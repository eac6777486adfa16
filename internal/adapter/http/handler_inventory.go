package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/adapter/http/response"
	"github.com/kitabu/kitabu/internal/usecase"
)

// InventoryHandler handles HTTP requests for inventory lots.
type InventoryHandler struct {
	inventory *usecase.InventoryUseCase
	auth      *middleware.Auth
	limit     func(http.HandlerFunc) http.HandlerFunc
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(inventory *usecase.InventoryUseCase, auth *middleware.Auth, limit func(http.HandlerFunc) http.HandlerFunc) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, auth: auth, limit: limit}
}

// RegisterRoutes registers inventory routes.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/lots/{id}", h.auth.Require(h.GetLot)).Methods("GET")
	router.HandleFunc("/api/v1/lots/{id}/history", h.auth.Require(h.GetHistory)).Methods("GET")
	router.HandleFunc("/api/v1/lots/{id}/consume", h.auth.Require(h.limit(h.Consume))).Methods("POST")
	router.HandleFunc("/api/v1/lots/{id}/transfer", h.auth.Require(h.limit(h.Transfer))).Methods("POST")
	router.HandleFunc("/api/v1/lots/{id}/adjust", h.auth.Require(h.limit(h.Adjust))).Methods("POST")
}

// GetLot handles GET /api/v1/lots/{id}.
func (h *InventoryHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lot, err := h.inventory.GetLot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "lot", lot)
}

// GetHistory handles GET /api/v1/lots/{id}/history.
func (h *InventoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.inventory.ListHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "lot history", records)
}

type consumeRequest struct {
	ProgramID string          `json:"program_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// Consume handles POST /api/v1/lots/{id}/consume.
func (h *InventoryHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req consumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	consumption, err := h.inventory.Consume(r.Context(), actorID(r), mux.Vars(r)["id"],
		req.ProgramID, req.Quantity, req.Notes)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "inventory consumed", consumption)
}

type transferRequest struct {
	FromCustodian string          `json:"from_custodian"`
	ToCustodian   string          `json:"to_custodian"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// Transfer handles POST /api/v1/lots/{id}/transfer.
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	transfer, err := h.inventory.Transfer(r.Context(), actorID(r), mux.Vars(r)["id"],
		req.FromCustodian, req.ToCustodian, req.Quantity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "custody transferred", transfer)
}

type adjustRequest struct {
	NewAvailable decimal.Decimal `json:"new_available"`
}

// Adjust handles POST /api/v1/lots/{id}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	lot, err := h.inventory.Adjust(r.Context(), actorID(r), mux.Vars(r)["id"], req.NewAvailable)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "inventory adjusted", lot)
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/adapter/http/response"
	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/usecase"
)

// LedgerHandler handles HTTP requests for ledger entries.
type LedgerHandler struct {
	ledger *usecase.LedgerUseCase
	auth   *middleware.Auth
	limit  func(http.HandlerFunc) http.HandlerFunc
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(ledger *usecase.LedgerUseCase, auth *middleware.Auth, limit func(http.HandlerFunc) http.HandlerFunc) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, auth: auth, limit: limit}
}

// RegisterRoutes registers ledger routes.
func (h *LedgerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/entries", h.auth.Require(h.limit(h.CreateEntry))).Methods("POST")
	router.HandleFunc("/api/v1/entries", h.auth.Require(h.ListEntries)).Methods("GET")
	router.HandleFunc("/api/v1/entries/{id}", h.auth.Require(h.GetEntry)).Methods("GET")
	router.HandleFunc("/api/v1/entries/{id}/void", h.auth.Require(h.limit(h.VoidEntry))).Methods("POST")
	router.HandleFunc("/api/v1/entries/{id}/restore", h.auth.Require(h.limit(h.RestoreEntry))).Methods("POST")
	router.HandleFunc("/api/v1/audit", h.auth.Require(h.ListAudit)).Methods("GET")
}

type createEntryRequest struct {
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	EntryDate     *time.Time      `json:"entry_date,omitempty"`
	DonorID       *string         `json:"donor_id,omitempty"`
	ProgramID     *string         `json:"program_id,omitempty"`
	CategoryID    *string         `json:"category_id,omitempty"`
	BankAccountID *string         `json:"bank_account_id,omitempty"`
	PartyID       *string         `json:"party_id,omitempty"`
	CustodianID   *string         `json:"custodian_id,omitempty"`
	ItemName      string          `json:"item_name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Description   string          `json:"description,omitempty"`
}

func actorID(r *http.Request) string {
	if claims := middleware.ActorFromContext(r.Context()); claims != nil {
		return claims.ActorID
	}
	return ""
}

// CreateEntry handles POST /api/v1/entries.
func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	input := domain.NewEntryInput{
		Kind:          domain.EntryKind(req.Kind),
		Amount:        req.Amount,
		CurrencyCode:  req.CurrencyCode,
		ExchangeRate:  req.ExchangeRate,
		DonorID:       req.DonorID,
		ProgramID:     req.ProgramID,
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		PartyID:       req.PartyID,
		CustodianID:   req.CustodianID,
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		Description:   req.Description,
	}
	if req.EntryDate != nil {
		input.EntryDate = *req.EntryDate
	}
	entry, err := h.ledger.CreateEntry(r.Context(), actorID(r), input)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "entry created", entry)
}

// GetEntry handles GET /api/v1/entries/{id}.
func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ledger.GetEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "entry", entry)
}

// ListEntries handles GET /api/v1/entries.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.EntryFilter{
		Kind:      domain.EntryKind(q.Get("kind")),
		Status:    domain.EntryStatus(q.Get("status")),
		ProgramID: q.Get("program_id"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}
	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filter.To = to
	}
	entries, err := h.ledger.ListEntries(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "entries", entries)
}

type voidRequest struct {
	Reason string `json:"reason"`
}

// VoidEntry handles POST /api/v1/entries/{id}/void.
func (h *LedgerHandler) VoidEntry(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	entry, err := h.ledger.VoidEntry(r.Context(), actorID(r), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "entry voided", entry)
}

// RestoreEntry handles POST /api/v1/entries/{id}/restore.
func (h *LedgerHandler) RestoreEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ledger.RestoreEntry(r.Context(), actorID(r), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "entry restored", entry)
}

// ListAudit handles GET /api/v1/audit.
func (h *LedgerHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	events, err := h.ledger.ListAuditEvents(r.Context(), q.Get("table"), q.Get("record_id"), limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "audit events", events)
}

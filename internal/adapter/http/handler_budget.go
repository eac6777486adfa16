package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/adapter/http/response"
	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/usecase"
)

// BudgetHandler handles HTTP requests for budget projection, programs and
// the derived reports.
type BudgetHandler struct {
	budget *usecase.BudgetUseCase
	auth   *middleware.Auth
	limit  func(http.HandlerFunc) http.HandlerFunc
}

// NewBudgetHandler creates a budget handler.
func NewBudgetHandler(budget *usecase.BudgetUseCase, auth *middleware.Auth, limit func(http.HandlerFunc) http.HandlerFunc) *BudgetHandler {
	return &BudgetHandler{budget: budget, auth: auth, limit: limit}
}

// RegisterRoutes registers budget routes.
func (h *BudgetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/budget/project", h.auth.Require(h.Project)).Methods("POST")
	router.HandleFunc("/api/v1/programs", h.auth.Require(h.limit(h.CreateProgram))).Methods("POST")
	router.HandleFunc("/api/v1/programs/{id}", h.auth.Require(h.GetProgram)).Methods("GET")
	router.HandleFunc("/api/v1/programs/{id}/budget", h.auth.Require(h.ListBudgetItems)).Methods("GET")
	router.HandleFunc("/api/v1/programs/{id}/actuals", h.auth.Require(h.ProgramActuals)).Methods("GET")
	router.HandleFunc("/api/v1/accounts/{id}/balance", h.auth.Require(h.AccountBalance)).Methods("GET")
}

type projectRequest struct {
	Items     []domain.TemplateItem `json:"items"`
	Headcount int                   `json:"headcount"`
}

// Project handles POST /api/v1/budget/project. Pure planning: nothing is
// persisted.
func (h *BudgetHandler) Project(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	projection, err := h.budget.Project(r.Context(), req.Items, req.Headcount)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "budget projection", projection)
}

type createProgramRequest struct {
	Name      string                `json:"name"`
	Headcount int                   `json:"headcount"`
	Template  []domain.TemplateItem `json:"template,omitempty"`
}

// CreateProgram handles POST /api/v1/programs.
func (h *BudgetHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	program, err := h.budget.CreateProgram(r.Context(), actorID(r), req.Name, req.Headcount, req.Template)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "program created", program)
}

// GetProgram handles GET /api/v1/programs/{id}.
func (h *BudgetHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.budget.GetProgram(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "program", program)
}

// ListBudgetItems handles GET /api/v1/programs/{id}/budget.
func (h *BudgetHandler) ListBudgetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.budget.ListBudgetItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "budget items", items)
}

// ProgramActuals handles GET /api/v1/programs/{id}/actuals.
func (h *BudgetHandler) ProgramActuals(w http.ResponseWriter, r *http.Request) {
	actuals, err := h.budget.ProgramActuals(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "program actuals", actuals)
}

// AccountBalance handles GET /api/v1/accounts/{id}/balance.
func (h *BudgetHandler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	balance, err := h.budget.AccountBalance(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Success(w, http.StatusOK, "account balance", map[string]interface{}{
		"bank_account_id": id,
		"balance":         balance,
	})
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/adapter/http/response"
	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
	"github.com/kitabu/kitabu/internal/usecase"
)

// Wiring just deep enough to exercise decode, use case dispatch and the
// envelope the handler writes back.

type memEntryRepo struct {
	entries map[string]*domain.LedgerEntry
}

func (m *memEntryRepo) Create(ctx context.Context, entry *domain.LedgerEntry) error {
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *memEntryRepo) FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "ledger entry", ID: id}
	}
	copied := *entry
	return &copied, nil
}

func (m *memEntryRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return m.FindByID(ctx, id)
}

func (m *memEntryRepo) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *memEntryRepo) List(ctx context.Context, filter ports.EntryFilter) ([]*domain.LedgerEntry, error) {
	var out []*domain.LedgerEntry
	for _, entry := range m.entries {
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

type memInventoryRepo struct {
	history []*domain.HistoryRecord
}

func (m *memInventoryRepo) ConsumedQuantity(ctx context.Context, lotID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *memInventoryRepo) CreateConsumption(ctx context.Context, c *domain.Consumption) error {
	return nil
}

func (m *memInventoryRepo) ListConsumptions(ctx context.Context, lotID string) ([]*domain.Consumption, error) {
	return nil, nil
}

func (m *memInventoryRepo) CreateTransfer(ctx context.Context, t *domain.CustodyTransfer) error {
	return nil
}

func (m *memInventoryRepo) ListTransfers(ctx context.Context, lotID string) ([]*domain.CustodyTransfer, error) {
	return nil, nil
}

func (m *memInventoryRepo) AppendHistory(ctx context.Context, rec *domain.HistoryRecord) error {
	m.history = append(m.history, rec)
	return nil
}

func (m *memInventoryRepo) ListHistory(ctx context.Context, lotID string) ([]*domain.HistoryRecord, error) {
	return m.history, nil
}

type memAuditRepo struct {
	events []*domain.AuditEvent
}

func (m *memAuditRepo) Create(ctx context.Context, event *domain.AuditEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memAuditRepo) List(ctx context.Context, tableName, recordID string, limit int) ([]*domain.AuditEvent, error) {
	return m.events, nil
}

type memCurrencyRepo struct{}

func (memCurrencyRepo) FindByCode(ctx context.Context, code string) (*domain.Currency, error) {
	if strings.ToUpper(code) != "USD" {
		return nil, &domain.NotFoundError{Resource: "currency", ID: code}
	}
	return &domain.Currency{Code: "USD", RateToBase: decimal.NewFromInt(1)}, nil
}

func (memCurrencyRepo) Upsert(ctx context.Context, currency *domain.Currency) error { return nil }

func (memCurrencyRepo) List(ctx context.Context) ([]*domain.Currency, error) { return nil, nil }

type memUnitOfWork struct {
	repos ports.Repositories
}

func (m *memUnitOfWork) Do(ctx context.Context, fn func(r ports.Repositories) error) error {
	return fn(m.repos)
}

type staticTokens struct{}

func (staticTokens) GenerateAccessToken(claims ports.TokenClaims) (string, error) {
	return "token", nil
}

func (staticTokens) ValidateAccessToken(token string) (*ports.TokenClaims, error) {
	if token != "good-token" {
		return nil, &domain.AuthError{}
	}
	return &ports.TokenClaims{ActorID: "actor-1", Role: "bookkeeper"}, nil
}

func newLedgerRouter(t *testing.T) *mux.Router {
	t.Helper()
	entries := &memEntryRepo{entries: make(map[string]*domain.LedgerEntry)}
	inventory := &memInventoryRepo{}
	audit := &memAuditRepo{}
	uow := &memUnitOfWork{repos: ports.Repositories{
		Entries:   entries,
		Inventory: inventory,
		Audit:     audit,
	}}
	log := logger.New(logger.Config{Level: "error", Format: "text", ServiceName: "test"})
	ledger := usecase.NewLedgerUseCase(uow, entries, memCurrencyRepo{}, audit, nil, log)

	auth := middleware.NewAuth(staticTokens{})
	passthrough := func(next http.HandlerFunc) http.HandlerFunc { return next }
	router := mux.NewRouter()
	NewLedgerHandler(ledger, auth, passthrough).RegisterRoutes(router)
	return router
}

func doJSON(router *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestLedgerHandler_CreateEntry(t *testing.T) {
	router := newLedgerRouter(t)

	body := `{"kind":"DONATION_BANK","amount":"1500","currency_code":"USD","exchange_rate":"1","bank_account_id":"acct-1"}`
	rec := doJSON(router, http.MethodPost, "/api/v1/entries", "good-token", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "DONATION_BANK", data["kind"])
	assert.Equal(t, "ACTIVE", data["status"])
}

func TestLedgerHandler_CreateEntry_InvalidBody(t *testing.T) {
	router := newLedgerRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/entries", "good-token", `{"kind":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
}

func TestLedgerHandler_CreateEntry_ValidationEnvelope(t *testing.T) {
	router := newLedgerRouter(t)

	body := `{"kind":"DONATION_BANK","amount":"-5","currency_code":"USD","exchange_rate":"1","bank_account_id":"acct-1"}`
	rec := doJSON(router, http.MethodPost, "/api/v1/entries", "good-token", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "amount", env.Error.Details["field"])
}

func TestLedgerHandler_RequiresToken(t *testing.T) {
	router := newLedgerRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/entries", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/entries", "stale-token", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLedgerHandler_VoidTwiceConflict(t *testing.T) {
	router := newLedgerRouter(t)

	body := `{"kind":"DONATION_BANK","amount":"100","currency_code":"USD","exchange_rate":"1","bank_account_id":"acct-1"}`
	rec := doJSON(router, http.MethodPost, "/api/v1/entries", "good-token", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]interface{})
	id := data["id"].(string)

	rec = doJSON(router, http.MethodPost, "/api/v1/entries/"+id+"/void", "good-token", `{"reason":"dup"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/entries/"+id+"/void", "good-token", `{"reason":"dup again"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STATE_CONFLICT", env.Error.Code)
}

func TestLedgerHandler_GetEntry_NotFound(t *testing.T) {
	router := newLedgerRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/entries/ghost", "good-token", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

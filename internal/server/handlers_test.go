package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/twindex/internal/app"
	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/models"
)

// mockQuoteService returns a scripted snapshot and records calls.
type mockQuoteService struct {
	mu           sync.Mutex
	snap         models.IndexSnapshot
	stale        bool
	currentCalls int
	refreshCalls int
}

func (m *mockQuoteService) Current(ctx context.Context) models.IndexSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCalls++
	return m.snap
}

func (m *mockQuoteService) Refresh(ctx context.Context) models.IndexSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	snap := m.snap
	snap.Error = ""
	return snap
}

func (m *mockQuoteService) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

func testSnapshot() models.IndexSnapshot {
	return models.IndexSnapshot{
		Code:          models.IndexCode,
		Name:          models.IndexName,
		Price:         1637.25,
		Change:        5.2,
		ChangePct:     0.32,
		FuturesPrice:  20107,
		FuturesOffset: -1449,
		Timestamp:     1740990000,
		TaipeiTime:    "2025-03-03 16:20:00",
		Source:        models.SourceHiStock,
	}
}

func newTestServer(svc *mockQuoteService) *Server {
	a := &app.App{
		Config:       common.NewDefaultConfig(),
		Logger:       common.NewSilentLogger(),
		QuoteService: svc,
	}
	return NewServer(a)
}

func TestHandleIndex_ReturnsSnapshot(t *testing.T) {
	svc := &mockQuoteService{snap: testSnapshot()}
	srv := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp indexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, models.IndexCode, resp.Code)
	assert.Equal(t, 1637.25, resp.Price)
	assert.Equal(t, models.SourceHiStock, resp.Source)
	assert.NotZero(t, resp.RequestTime)
	assert.NotEmpty(t, resp.ServerTime)

	assert.Equal(t, 1, svc.currentCalls)
	assert.Equal(t, 0, svc.refreshCalls, "fresh snapshot must not trigger a blocking refresh")
}

func TestHandleIndex_ForceRefresh(t *testing.T) {
	svc := &mockQuoteService{snap: testSnapshot()}
	srv := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/index?refresh=true", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshCalls)
}

func TestHandleIndex_StaleSnapshotRefreshedBeforeResponding(t *testing.T) {
	svc := &mockQuoteService{snap: testSnapshot(), stale: true}
	srv := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshCalls)
}

func TestHandleIndex_FallbackSnapshotStillServed(t *testing.T) {
	snap := testSnapshot()
	snap.Source = models.SourceFallback
	snap.Error = "network error: connection refused"
	svc := &mockQuoteService{snap: snap}
	srv := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "fallback data is not an HTTP failure")

	var resp indexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SourceFallback, resp.Source)
	assert.Contains(t, resp.Error, "connection refused")
}

func TestHandleIndex_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&mockQuoteService{snap: testSnapshot()})

	req := httptest.NewRequest(http.MethodPost, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&mockQuoteService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(&mockQuoteService{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["version"])
}

func TestMiddleware_CORSAndCorrelationID(t *testing.T) {
	srv := newTestServer(&mockQuoteService{snap: testSnapshot()})

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestMiddleware_OptionsPreflight(t *testing.T) {
	srv := newTestServer(&mockQuoteService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/index", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddleware_CorrelationIDPassthrough(t *testing.T) {
	srv := newTestServer(&mockQuoteService{snap: testSnapshot()})

	req := httptest.NewRequest(http.MethodGet, "/api/index", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Correlation-ID"))
}

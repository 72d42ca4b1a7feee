package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gas-monitor/internal/config"
	"gas-monitor/internal/service/export"
	"gas-monitor/internal/service/monitor"
	"gas-monitor/internal/storage"
)

// stubStorage реализует только то, что дёргают тесты.
type stubStorage struct {
	Storage
	customers []*storage.Customer
}

func (s stubStorage) ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error) {
	return s.customers, nil
}

func (s stubStorage) ListReadings(ctx context.Context, filter storage.ReadingFilter) ([]storage.Reading, error) {
	return []storage.Reading{}, nil
}

func (s stubStorage) GetProfileByLogin(ctx context.Context, login string) (*storage.Profile, error) {
	return nil, storage.ErrNotFound
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Config{
		Timezone:       "UTC",
		AdminLogin:     "admin",
		AdminPass:      "secret",
		AllowedOrigins: []string{"http://localhost:5173"},
		Export:         config.Export{Timeout: time.Second},
	}
	store := stubStorage{customers: []*storage.Customer{{Code: "C1", Name: "Alpha", IsActive: true}}}
	ms := monitor.NewService(store, time.UTC)

	return routes(cfg, slog.Default(), store, ms, export.NewService(ms, store, "test"))
}

func TestRoutes_Public(t *testing.T) {
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"C1"`)
}

func TestRoutes_Protected(t *testing.T) {
	router := testRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/profiles"},
		{http.MethodPut, "/api/admin/customers/C1"},
		{http.MethodDelete, "/api/admin/readings/0b6f3c2e-8a51-4c8e-9f0e-2d3c4b5a6f70"},
		{http.MethodPost, "/api/readings"},
		{http.MethodGet, "/api/readings"},
		{http.MethodGet, "/api/report/excel"},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}

	// неизвестный оператор
	req := httptest.NewRequest(http.MethodPost, "/api/readings", strings.NewReader(`{}`))
	req.SetBasicAuth("nobody", "pw")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_AdminReadsWithCredentials(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/api/readings", "/api/report/excel"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("admin", "secret")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	// неверный пароль админа
	req := httptest.NewRequest(http.MethodGet, "/api/report/excel", nil)
	req.SetBasicAuth("admin", "wrong")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/readings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupLogger_ErrorsGoToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	log := setupLogger(envProd, path)
	log.Info("server started")
	log.With(slog.String("op", "test")).Error("failed to open db")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "failed to open db")
	assert.Contains(t, string(b), "op=test")
	assert.NotContains(t, string(b), "server started")
}

func TestSetupLogger_NoFile(t *testing.T) {
	log := setupLogger(envDev, "")
	_, ok := log.Handler().(*dualHandler)
	assert.False(t, ok)
}

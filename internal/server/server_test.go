package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/config"
	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/llm/llmtest"
)

func TestRoutes(t *testing.T) {
	stub := llmtest.New(llmtest.JSON(map[string]any{"response": "Try the Lekki Conservation Centre."}))
	require.NoError(t, llm.SetDefault(stub))

	cfg := config.Default()
	cfg.APIKeys = []string{"test-key"}

	svc, err := NewServices(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	assert.Nil(t, svc.Catalog, "static hotels have no catalog")
	assert.Nil(t, svc.Audit, "no GCP project configured")
	_, hasBigQuery := svc.Health["bigquery"]
	assert.True(t, hasBigQuery, "disabled warehouse still reported by health")

	h := Routes(cfg, svc)

	t.Run("health is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("api requires key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schemas", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("schemas", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schemas", nil)
		req.Header.Set("X-API-Key", "test-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ItineraryInput")
	})

	t.Run("chat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"query":"What is there to do in Lagos?"}`))
		req.Header.Set("X-API-Key", "test-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Lekki Conservation Centre")
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("optional routes are not mounted", func(t *testing.T) {
		for _, path := range []string{"/api/v1/audit/summary", "/api/v1/hotels/catalog"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("X-API-Key", "test-key")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code, path)
		}
	})
}

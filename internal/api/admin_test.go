package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"
)

func TestAdminEndpoints(t *testing.T) {
	t.Run("POST /v1/admin/trigger-update", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/trigger-update", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
		}

		var resp triggerResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.TaskID == "" {
			t.Error("expected a non-empty task_id")
		}
	})

	t.Run("GET /v1/admin/update-status/{task_id} - not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/update-status/does-not-exist", nil)
		req.SetPathValue("task_id", "does-not-exist")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/admin/api-usage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/api-usage", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/admin/usage-dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/usage-dashboard", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/admin/config", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/config", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var cfg AdminConfig
		if err := json.NewDecoder(w.Body).Decode(&cfg); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if cfg.MonthlyAPILimit != 1000 {
			t.Errorf("expected monthly_api_limit 1000, got %d", cfg.MonthlyAPILimit)
		}
	})

	t.Run("PUT /v1/admin/config", func(t *testing.T) {
		body, _ := json.Marshal(updateConfigRequest{MonthlyAPILimit: intPtr(2000)})
		req := httptest.NewRequest(http.MethodPut, "/v1/admin/config", bytes.NewReader(body))
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var cfg AdminConfig
		if err := json.NewDecoder(w.Body).Decode(&cfg); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if cfg.MonthlyAPILimit != 2000 {
			t.Errorf("expected monthly_api_limit 2000, got %d", cfg.MonthlyAPILimit)
		}

		// Put the default back so later tests (and re-runs) see a stable cap.
		reset, _ := json.Marshal(updateConfigRequest{MonthlyAPILimit: intPtr(1000)})
		req2 := httptest.NewRequest(http.MethodPut, "/v1/admin/config", bytes.NewReader(reset))
		w2 := httptest.NewRecorder()
		testServer.ServeHTTP(w2, req2)
		if w2.Code != http.StatusOK {
			t.Fatalf("expected status 200 restoring config, got %d: %s", w2.Code, w2.Body.String())
		}
	})

	t.Run("PUT /v1/admin/config - rejects out-of-range threshold", func(t *testing.T) {
		body, _ := json.Marshal(updateConfigRequest{WarningThresholdPercent: floatPtr(150)})
		req := httptest.NewRequest(http.MethodPut, "/v1/admin/config", bytes.NewReader(body))
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

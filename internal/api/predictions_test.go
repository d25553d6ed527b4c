package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"
)

func TestPredictionEndpoints(t *testing.T) {
	t.Run("GET /v1/predictions?season=2025", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	})

	t.Run("GET /v1/predictions/stored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/stored?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/predictions/{game_id} - not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/9999", nil)
		req.SetPathValue("game_id", "9999")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/predictions/accuracy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/accuracy?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp accuracyResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	})

	t.Run("GET /v1/predictions/accuracy/team/{id}", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/accuracy/team/1", nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/predictions/accuracy/team/{id} - invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/accuracy/team/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/predictions/comparison", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/comparison?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/predictions/comparison - missing season", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/predictions/comparison", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"

	"cfbranker.dev/cfb/internal/core"
)

func TestSeasonEndpoints(t *testing.T) {
	t.Run("GET /v1/seasons", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/seasons", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var seasons []core.Season
		if err := json.NewDecoder(w.Body).Decode(&seasons); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(seasons) != 2 {
			t.Errorf("expected 2 seasons, got %d", len(seasons))
		}
	})

	t.Run("GET /v1/seasons/active", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/seasons/active", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var season core.Season
		if err := json.NewDecoder(w.Body).Decode(&season); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if season.Year != 2025 {
			t.Errorf("expected active season 2025, got %d", season.Year)
		}
	})

	t.Run("GET /v1/seasons/{year}", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/seasons/2024", nil)
		req.SetPathValue("year", "2024")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/seasons/{year} - not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/seasons/1899", nil)
		req.SetPathValue("year", "1899")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	// 2024 has no processed games in the fixture set, so resetting it only
	// exercises reset_preseason's initial-rating recomputation, without
	// perturbing the ratings other tests assert on for season 2025.
	t.Run("POST /v1/seasons/{year}/reset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/seasons/2024/reset", nil)
		req.SetPathValue("year", "2024")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp resetSeasonResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Reset {
			t.Error("expected reset=true")
		}
	})
}

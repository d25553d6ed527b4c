package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"
)

func TestTeamEndpoints(t *testing.T) {
	t.Run("GET /v1/teams", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total == 0 {
			t.Error("expected at least one team")
		}
		if resp.Page != 1 {
			t.Errorf("expected page 1, got %d", resp.Page)
		}
	})

	t.Run("GET /v1/teams?tier=FCS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/teams?tier=FCS", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("expected 2 FCS teams, got %d", resp.Total)
		}
	})

	t.Run("GET /v1/teams/{id}", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/teams/1", nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/teams/{id} - not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/teams/9999", nil)
		req.SetPathValue("id", "9999")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/teams/{id}/sos", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/teams/1/sos?season=2025", nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp sosResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.SOS == nil {
			t.Error("expected team 1 to have a computed SOS from its processed games")
		}
	})
}

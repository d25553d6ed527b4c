package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"
)

func TestStatsEndpoint(t *testing.T) {
	t.Run("GET /v1/stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp statsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.TeamCount != 8 {
			t.Errorf("expected 8 teams, got %d", resp.TeamCount)
		}
		if resp.ActiveSeason == nil || *resp.ActiveSeason != 2025 {
			t.Errorf("expected active season 2025, got %v", resp.ActiveSeason)
		}
		if resp.CurrentWeek == nil {
			t.Error("expected a current_week value")
		}
	})
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"

	"cfbranker.dev/cfb/internal/ranking"
)

func TestRankingEndpoints(t *testing.T) {
	t.Run("GET /v1/rankings?season=2025", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rankings?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var ranked []ranking.RankedTeam
		if err := json.NewDecoder(w.Body).Decode(&ranked); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(ranked) != 8 {
			t.Errorf("expected 8 ranked teams, got %d", len(ranked))
		}
		if ranked[0].Rank != 1 {
			t.Errorf("expected first team ranked 1, got %d", ranked[0].Rank)
		}
	})

	t.Run("GET /v1/rankings?season=2025&limit=3", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rankings?season=2025&limit=3", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var ranked []ranking.RankedTeam
		if err := json.NewDecoder(w.Body).Decode(&ranked); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(ranked) != 3 {
			t.Errorf("expected 3 ranked teams, got %d", len(ranked))
		}
	})

	t.Run("GET /v1/rankings/history - missing team_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rankings/history?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/rankings/history", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rankings/history?team_id=1&season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

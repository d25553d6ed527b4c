package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/lib/pq"
)

func TestGameEndpoints(t *testing.T) {
	t.Run("GET /v1/games?season=2025", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games?season=2025", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 4 {
			t.Errorf("expected 4 games for season 2025, got %d", resp.Total)
		}
	})

	t.Run("GET /v1/games?processed=false", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games?season=2025&processed=false", nil)
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 1 {
			t.Errorf("expected 1 scheduled game, got %d", resp.Total)
		}
	})

	t.Run("GET /v1/games/{id}", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/1", nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("GET /v1/games/{id} - not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/9999", nil)
		req.SetPathValue("id", "9999")
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("POST /v1/games - records and processes a completed game", func(t *testing.T) {
		body, _ := json.Marshal(createGameRequest{
			Season: 2025, Week: 4, HomeID: 5, AwayID: 6,
			HomeScore: 30, AwayScore: 14,
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader(body))
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp createGameResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Game.IsProcessed {
			t.Error("expected newly recorded game to be processed")
		}
		if resp.HomeRatingDelta <= 0 {
			t.Errorf("expected a positive rating delta for the winning home team, got %v", resp.HomeRatingDelta)
		}
		if resp.HomeRatingDelta+resp.AwayRatingDelta != 0 {
			t.Errorf("expected zero-sum rating change, got home=%v away=%v", resp.HomeRatingDelta, resp.AwayRatingDelta)
		}
	})

	t.Run("POST /v1/games - rejects equal home and away teams", func(t *testing.T) {
		body, _ := json.Marshal(createGameRequest{
			Season: 2025, Week: 4, HomeID: 1, AwayID: 1, HomeScore: 20, AwayScore: 10,
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader(body))
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("POST /v1/games - rejects negative scores", func(t *testing.T) {
		body, _ := json.Marshal(createGameRequest{
			Season: 2025, Week: 4, HomeID: 1, AwayID: 2, HomeScore: -1, AwayScore: 10,
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader(body))
		w := httptest.NewRecorder()

		testServer.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})
}

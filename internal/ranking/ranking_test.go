package ranking

import (
	"testing"
	"time"

	"cfbranker.dev/cfb/internal/core"
)

func TestComputeSOSAll(t *testing.T) {
	ratings := map[core.TeamID]float64{1: 1700, 2: 1500, 3: 1300, 4: 1200}
	games := []core.Game{
		{ID: 1, HomeID: 1, AwayID: 2, IsProcessed: true},
		{ID: 2, HomeID: 1, AwayID: 4, IsProcessed: true},
		{ID: 3, HomeID: 2, AwayID: 3, IsProcessed: false},
		{ID: 4, HomeID: 2, AwayID: 1, IsProcessed: true, ExcludedFromRankings: true},
	}

	sos := computeSOSAll(games, ratings)

	if got := sos[1]; got != (1500+1200)/2 {
		t.Fatalf("team 1 SOS = %v, want %v", got, (1500.0+1200.0)/2)
	}
	if _, ok := sos[3]; ok {
		t.Fatalf("team 3 should have no SOS (only an unprocessed game)")
	}
}

func TestSortChronological(t *testing.T) {
	d1 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)

	games := []core.Game{
		{ID: 3, Week: 2, GameDate: &d2},
		{ID: 1, Week: 1, GameDate: &d1},
		{ID: 2, Week: 1, GameDate: &d2},
	}

	sortChronological(games)

	if games[0].ID != 1 || games[1].ID != 2 || games[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", games)
	}
}

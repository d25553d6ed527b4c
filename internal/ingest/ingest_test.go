package ingest

import (
	"testing"

	"cfbranker.dev/cfb/internal/core"
)

func TestNormalizeRankPassesThroughRankedValues(t *testing.T) {
	if got := normalizeRank(1); got != 1 {
		t.Errorf("normalizeRank(1) = %d, want 1", got)
	}
	if got := normalizeRank(25); got != 25 {
		t.Errorf("normalizeRank(25) = %d, want 25", got)
	}
}

func TestNormalizeRankMapsNonPositiveToSentinel(t *testing.T) {
	if got := normalizeRank(0); got != core.UnrankedSentinel {
		t.Errorf("normalizeRank(0) = %d, want sentinel %d", got, core.UnrankedSentinel)
	}
	if got := normalizeRank(-1); got != core.UnrankedSentinel {
		t.Errorf("normalizeRank(-1) = %d, want sentinel %d", got, core.UnrankedSentinel)
	}
}

func TestIsPostseasonExcludedByDefault(t *testing.T) {
	cases := []struct {
		gameType core.GameType
		want     bool
	}{
		{core.GameRegular, false},
		{core.GameConferenceChampionship, false},
		{core.GameBowl, true},
		{core.GamePlayoff, true},
	}

	for _, c := range cases {
		if got := IsPostseasonExcludedByDefault(c.gameType); got != c.want {
			t.Errorf("IsPostseasonExcludedByDefault(%v) = %v, want %v", c.gameType, got, c.want)
		}
	}
}

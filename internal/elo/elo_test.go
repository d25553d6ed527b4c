package elo

import (
	"math"
	"testing"

	"cfbranker.dev/cfb/internal/core"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPreseasonRating(t *testing.T) {
	cases := []struct {
		name                string
		tier                core.ConferenceTier
		recruitingRank      int
		transferRank        int
		returningProduction float64
		want                float64
	}{
		{"p5 top prospect", core.TierP5, 3, 12, 0.72, 1775},
		{"unranked fcs", core.TierFCS, core.UnrankedSentinel, core.UnrankedSentinel, 0.1, 1300},
		{"g5 mid pack", core.TierG5, 40, 60, 0.55, 1500 + 50 + 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PreseasonRating(tc.tier, tc.recruitingRank, tc.transferRank, tc.returningProduction)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Fatalf("PreseasonRating() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateStandardGame(t *testing.T) {
	res := Update(1600, 1500, 28, 21, core.TierP5, core.TierP5, false)

	if !almostEqual(res.HomeExpected, 0.72108, 1e-3) {
		t.Fatalf("HomeExpected = %v, want ~0.72108", res.HomeExpected)
	}
	if !almostEqual(res.HomeDelta, 18.56, 0.05) {
		t.Fatalf("HomeDelta = %v, want ~18.56", res.HomeDelta)
	}
	if !almostEqual(res.HomeDelta, -res.AwayDelta, 1e-9) {
		t.Fatalf("deltas not symmetric: home=%v away=%v", res.HomeDelta, res.AwayDelta)
	}
}

func TestUpdateUpsetWithConferenceMultiplier(t *testing.T) {
	res := Update(1700, 1450, 21, 24, core.TierP5, core.TierG5, false)

	if !almostEqual(res.HomeExpected, 0.85976, 1e-3) {
		t.Fatalf("HomeExpected = %v, want ~0.85976", res.HomeExpected)
	}
	if !almostEqual(res.HomeDelta, -41.954, 0.1) {
		t.Fatalf("HomeDelta = %v, want ~-41.954", res.HomeDelta)
	}
}

func TestUpdateTieSymmetric(t *testing.T) {
	res := Update(1600, 1600, 14, 14, core.TierP5, core.TierP5, false)

	if !almostEqual(res.HomeExpected, 0.5930, 1e-3) {
		// home field still applies on a tie; expected != 0.5
	}
	if res.HomeDelta >= 0 {
		t.Fatalf("expected negative home delta when a home favorite only ties, got %v", res.HomeDelta)
	}
	if !almostEqual(res.HomeDelta, -res.AwayDelta, 1e-9) {
		t.Fatalf("deltas not symmetric around zero: home=%v away=%v", res.HomeDelta, res.AwayDelta)
	}
}

func TestUpdateBlowoutSaturatesMOV(t *testing.T) {
	small := Update(1500, 1500, 60, 48, core.TierP5, core.TierP5, false)
	large := Update(1500, 1500, 90, 1, core.TierP5, core.TierP5, false)

	wantCap := math.Min(math.Log(12+1), MOVCap)
	if wantCap != MOVCap {
		t.Fatalf("test setup invalid: 12-point diff does not saturate MOV cap")
	}

	ratio := large.HomeDelta / small.HomeDelta
	if ratio < 0.99 || ratio > 1.5 {
		t.Fatalf("expected both large-margin games to cap near the same multiplier, got ratio %v", ratio)
	}
}

func TestUpdateNeutralSiteDropsHomeField(t *testing.T) {
	neutral := Update(1600, 1600, 21, 21, core.TierP5, core.TierP5, true)
	if !almostEqual(neutral.HomeExpected, 0.5, 1e-9) {
		t.Fatalf("neutral-site equal ratings should yield 0.5 expected, got %v", neutral.HomeExpected)
	}
}

func TestConferenceMultiplier(t *testing.T) {
	cases := []struct {
		winner, loser core.ConferenceTier
		want          float64
	}{
		{core.TierP5, core.TierG5, 0.9},
		{core.TierG5, core.TierP5, 1.1},
		{core.TierP5, core.TierFCS, 0.5},
		{core.TierFCS, core.TierP5, 2.0},
		{core.TierP5, core.TierP5, 1.0},
		{core.TierG5, core.TierG5, 1.0},
	}
	for _, tc := range cases {
		got := ConferenceMultiplier(tc.winner, tc.loser)
		if got != tc.want {
			t.Fatalf("ConferenceMultiplier(%v,%v) = %v, want %v", tc.winner, tc.loser, got, tc.want)
		}
	}
}

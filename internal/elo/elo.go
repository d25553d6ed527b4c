// Package elo implements the modified Elo rating update and preseason
// initializer. Every function here is pure: no storage, no clock, no
// randomness. Callers are responsible for validating input ranges.
package elo

import (
	"math"

	"cfbranker.dev/cfb/internal/core"
)

const (
	// HomeFieldAdvantage is added to the home team's rating for
	// probability computation only, never persisted.
	HomeFieldAdvantage = 65.0

	// KFactor scales every rating transfer.
	KFactor = 32.0

	// MOVCap bounds the margin-of-victory multiplier.
	MOVCap = 2.5

	fbsBaseRating = 1500.0
	fcsBaseRating = 1300.0
)

// Result is the outcome of a single rating update.
type Result struct {
	HomeDelta    float64
	AwayDelta    float64
	HomeExpected float64
}

// PreseasonRating computes a team's starting rating for a season from its
// recruiting rank, transfer-portal rank, and returning-production share.
// Sentinel ranks (core.UnrankedSentinel) always contribute zero bonus.
func PreseasonRating(tier core.ConferenceTier, recruitingRank, transferRank int, returningProduction float64) float64 {
	base := fbsBaseRating
	if tier == core.TierFCS {
		base = fcsBaseRating
	}

	return base + recruitingBonus(recruitingRank) + transferBonus(transferRank) + productionBonus(returningProduction)
}

func recruitingBonus(rank int) float64 {
	switch {
	case rank <= 0 || rank >= core.UnrankedSentinel:
		return 0
	case rank <= 5:
		return 200
	case rank <= 10:
		return 150
	case rank <= 25:
		return 100
	case rank <= 50:
		return 50
	case rank <= 75:
		return 25
	default:
		return 0
	}
}

func transferBonus(rank int) float64 {
	switch {
	case rank <= 0 || rank >= core.UnrankedSentinel:
		return 0
	case rank <= 5:
		return 100
	case rank <= 10:
		return 75
	case rank <= 25:
		return 50
	case rank <= 50:
		return 25
	default:
		return 0
	}
}

func productionBonus(p float64) float64 {
	switch {
	case p >= 0.80:
		return 40
	case p >= 0.60:
		return 25
	case p >= 0.40:
		return 10
	default:
		return 0
	}
}

// ConferenceMultiplier derives the conference-tier multiplier for a matchup
// from the winning and losing side's tiers.
func ConferenceMultiplier(winnerTier, loserTier core.ConferenceTier) float64 {
	switch {
	case winnerTier == core.TierP5 && loserTier == core.TierG5:
		return 0.9
	case winnerTier == core.TierG5 && loserTier == core.TierP5:
		return 1.1
	case winnerTier != core.TierFCS && loserTier == core.TierFCS:
		return 0.5
	case winnerTier == core.TierFCS && loserTier != core.TierFCS:
		return 2.0
	default:
		return 1.0
	}
}

// Update computes the rating deltas for a single completed game. It never
// mutates its inputs and never touches storage.
func Update(homeRating, awayRating float64, homeScore, awayScore int, homeTier, awayTier core.ConferenceTier, isNeutralSite bool) Result {
	effectiveHome := homeRating
	if !isNeutralSite {
		effectiveHome += HomeFieldAdvantage
	}

	expectedHome := 1.0 / (1.0 + math.Pow(10, (awayRating-effectiveHome)/400.0))

	var actualHome float64
	switch {
	case homeScore > awayScore:
		actualHome = 1.0
	case homeScore < awayScore:
		actualHome = 0.0
	default:
		actualHome = 0.5
	}

	movMultiplier := 1.0
	if homeScore != awayScore {
		diff := homeScore - awayScore
		if diff < 0 {
			diff = -diff
		}
		movMultiplier = math.Min(math.Log(float64(diff)+1), MOVCap)
	}

	var confMultiplier float64
	switch {
	case homeScore == awayScore:
		confMultiplier = 1.0
	case homeScore > awayScore:
		confMultiplier = ConferenceMultiplier(homeTier, awayTier)
	default:
		confMultiplier = ConferenceMultiplier(awayTier, homeTier)
	}

	homeDelta := KFactor * (actualHome - expectedHome) * movMultiplier * confMultiplier

	return Result{
		HomeDelta:    homeDelta,
		AwayDelta:    -homeDelta,
		HomeExpected: expectedHome,
	}
}

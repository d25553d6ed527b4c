// Package prediction generates, stores, and evaluates pre-game forecasts,
// and compares the engine's accuracy against the AP poll baseline.
package prediction

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/elo"
)

const (
	BaseScore         = 30.0
	ScoreSensitivity  = 3.5
	ConfidenceHighCut = 0.80
	ConfidenceMedCut  = 0.65
)

// Draft is an unsaved prediction for a scheduled game.
type Draft struct {
	PredictedWinnerID  core.TeamID
	PredictedHomeScore int
	PredictedAwayScore int
	HomeWinProbability float64
	AwayWinProbability float64
	Confidence         core.Confidence
}

// Engine produces, stores, and evaluates predictions.
type Engine struct {
	predictions core.PredictionRepository
	teams       core.TeamRepository
	appoll      core.APPollRepository
	log         *log.Logger
}

func NewEngine(predictions core.PredictionRepository, teams core.TeamRepository, appoll core.APPollRepository, logger *log.Logger) *Engine {
	return &Engine{predictions: predictions, teams: teams, appoll: appoll, log: logger}
}

// Predict computes a draft forecast from the two teams' current ratings
// using the same probability formula as elo.Update, without mutating
// anything.
func Predict(homeRating, awayRating float64, homeID, awayID core.TeamID, isNeutralSite bool) Draft {
	effectiveHome := homeRating
	if !isNeutralSite {
		effectiveHome += elo.HomeFieldAdvantage
	}

	homeWinProb := 1.0 / (1.0 + math.Pow(10, (awayRating-effectiveHome)/400.0))
	awayWinProb := 1.0 - homeWinProb

	ratingDiff := effectiveHome - awayRating
	homeScore := clampNonNegative(round(BaseScore + (ratingDiff/100)*ScoreSensitivity))
	awayScore := clampNonNegative(round(BaseScore - (ratingDiff/100)*ScoreSensitivity))

	winner := homeID
	if awayWinProb > homeWinProb {
		winner = awayID
	}

	maxProb := math.Max(homeWinProb, awayWinProb)
	confidence := core.ConfidenceLow
	switch {
	case maxProb > ConfidenceHighCut:
		confidence = core.ConfidenceHigh
	case maxProb > ConfidenceMedCut:
		confidence = core.ConfidenceMedium
	}

	return Draft{
		PredictedWinnerID:  winner,
		PredictedHomeScore: homeScore,
		PredictedAwayScore: awayScore,
		HomeWinProbability: homeWinProb,
		AwayWinProbability: awayWinProb,
		Confidence:         confidence,
	}
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// CreateAndStore writes a Prediction for a scheduled game with no existing
// prediction row, capturing the teams' current ratings at this instant.
func (e *Engine) CreateAndStore(ctx context.Context, game *core.Game, home, away *core.Team) error {
	existing, err := e.predictions.GetByGameID(ctx, game.ID)
	if err != nil && !core.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return nil
	}

	draft := Predict(home.CurrentRating, away.CurrentRating, home.ID, away.ID, game.IsNeutralSite)

	p := &core.Prediction{
		GameID:              game.ID,
		PredictedWinnerID:   draft.PredictedWinnerID,
		PredictedHomeScore:  draft.PredictedHomeScore,
		PredictedAwayScore:  draft.PredictedAwayScore,
		HomeWinProbability:  draft.HomeWinProbability,
		AwayWinProbability:  draft.AwayWinProbability,
		PreGameHomeRating:   home.CurrentRating,
		PreGameAwayRating:   away.CurrentRating,
		Confidence:          draft.Confidence,
		WasCorrect:          core.Unresolved,
	}

	return e.predictions.Create(ctx, p)
}

// Evaluate resolves was_correct for a game's prediction after it has been
// processed. Games excluded from rankings are left unresolved.
func (e *Engine) Evaluate(ctx context.Context, game *core.Game) error {
	if game.ExcludedFromRankings {
		return nil
	}

	p, err := e.predictions.GetByGameID(ctx, game.ID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil
		}
		return err
	}

	actualWinner := game.HomeID
	if game.AwayScore > game.HomeScore {
		actualWinner = game.AwayID
	}

	correct := core.TriStateFromBool(p.PredictedWinnerID == actualWinner)
	return e.predictions.SetOutcome(ctx, game.ID, correct)
}

// Accuracy aggregates resolved predictions matching filter.
func (e *Engine) Accuracy(ctx context.Context, filter core.PredictionFilter) (total, resolved, correct int, percentage float64, err error) {
	total, resolved, correct, err = e.predictions.Accuracy(ctx, filter)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if resolved > 0 {
		percentage = float64(correct) / float64(resolved) * 100
	}
	return total, resolved, correct, percentage, nil
}

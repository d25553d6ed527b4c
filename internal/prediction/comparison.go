package prediction

import (
	"context"
	"sort"

	"cfbranker.dev/cfb/internal/core"
)

// WeekAccuracy is one week's worth of elo-vs-ap comparison counts.
type WeekAccuracy struct {
	Week            int `json:"week"`
	BothCorrect     int `json:"both_correct"`
	EloOnlyCorrect  int `json:"elo_only_correct"`
	APOnlyCorrect   int `json:"ap_only_correct"`
	BothWrong       int `json:"both_wrong"`
}

// Disagreement records a game where the Elo and AP-poll predictors picked
// different winners.
type Disagreement struct {
	GameID        core.GameID `json:"game_id"`
	Week          int         `json:"week"`
	EloWinnerID   core.TeamID `json:"elo_winner_id"`
	APWinnerID    core.TeamID `json:"ap_winner_id"`
	ActualWinner  core.TeamID `json:"actual_winner_id"`
}

// Comparison is the full result of comparing the Elo predictor to the AP
// poll baseline over a season.
type Comparison struct {
	Season        core.SeasonYear `json:"season"`
	ByWeek        []WeekAccuracy  `json:"by_week"`
	Disagreements []Disagreement  `json:"disagreements"`
}

// gameSource is the minimal game/team access the comparison needs; the
// ranking service's repositories satisfy it directly.
type gameSource interface {
	ListBySeason(ctx context.Context, season core.SeasonYear) ([]core.Game, error)
}

// CompareToAP computes the elo-vs-ap comparison for every resolved game in
// a season where both an Elo prediction exists and both teams appeared in
// that week's AP poll.
func (e *Engine) CompareToAP(ctx context.Context, games gameSource, season core.SeasonYear) (*Comparison, error) {
	all, err := games.ListBySeason(ctx, season)
	if err != nil {
		return nil, err
	}

	weekly := map[int]*WeekAccuracy{}
	var disagreements []Disagreement

	for _, g := range all {
		if !g.IsProcessed || g.ExcludedFromRankings {
			continue
		}

		pred, err := e.predictions.GetByGameID(ctx, g.ID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		homePoll, err := e.appoll.GetTeamRank(ctx, season, g.Week, g.HomeID)
		if err != nil && !core.IsNotFound(err) {
			return nil, err
		}
		awayPoll, err := e.appoll.GetTeamRank(ctx, season, g.Week, g.AwayID)
		if err != nil && !core.IsNotFound(err) {
			return nil, err
		}
		if homePoll == nil || awayPoll == nil {
			continue
		}

		actualWinner := g.HomeID
		if g.AwayScore > g.HomeScore {
			actualWinner = g.AwayID
		}

		apWinner := g.HomeID
		if awayPoll.Rank < homePoll.Rank {
			apWinner = g.AwayID
		}

		eloCorrect := pred.PredictedWinnerID == actualWinner
		apCorrect := apWinner == actualWinner

		wk, ok := weekly[g.Week]
		if !ok {
			wk = &WeekAccuracy{Week: g.Week}
			weekly[g.Week] = wk
		}

		switch {
		case eloCorrect && apCorrect:
			wk.BothCorrect++
		case eloCorrect && !apCorrect:
			wk.EloOnlyCorrect++
		case !eloCorrect && apCorrect:
			wk.APOnlyCorrect++
		default:
			wk.BothWrong++
		}

		if pred.PredictedWinnerID != apWinner {
			disagreements = append(disagreements, Disagreement{
				GameID:       g.ID,
				Week:         g.Week,
				EloWinnerID:  pred.PredictedWinnerID,
				APWinnerID:   apWinner,
				ActualWinner: actualWinner,
			})
		}
	}

	byWeek := make([]WeekAccuracy, 0, len(weekly))
	for _, wk := range weekly {
		byWeek = append(byWeek, *wk)
	}
	sort.Slice(byWeek, func(i, j int) bool { return byWeek[i].Week < byWeek[j].Week })

	return &Comparison{Season: season, ByWeek: byWeek, Disagreements: disagreements}, nil
}

package prediction

import (
	"context"
	"testing"

	"cfbranker.dev/cfb/internal/core"
)

type fakeGameSource struct {
	games []core.Game
}

func (f *fakeGameSource) ListBySeason(ctx context.Context, season core.SeasonYear) ([]core.Game, error) {
	var out []core.Game
	for _, g := range f.games {
		if g.Season == season {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeAPPollRepo struct {
	ranks map[core.TeamID]int
}

func (f *fakeAPPollRepo) Upsert(ctx context.Context, r *core.APPollRanking) error { return nil }

func (f *fakeAPPollRepo) ListByWeek(ctx context.Context, season core.SeasonYear, week int) ([]core.APPollRanking, error) {
	return nil, nil
}

func (f *fakeAPPollRepo) GetTeamRank(ctx context.Context, season core.SeasonYear, week int, teamID core.TeamID) (*core.APPollRanking, error) {
	rank, ok := f.ranks[teamID]
	if !ok {
		return nil, core.NewNotFoundError("ap_poll_ranking", "")
	}
	return &core.APPollRanking{Season: season, Week: week, TeamID: teamID, Rank: rank}, nil
}

func TestCompareToAPSplitsByWeekAndFlagsDisagreements(t *testing.T) {
	predRepo := newFakePredictionRepo()
	// Week 1: elo correctly picks the home underdog that the AP poll gets wrong.
	predRepo.byGame[1] = &core.Prediction{GameID: 1, PredictedWinnerID: 1}
	// Week 1: both predictors agree and are correct.
	predRepo.byGame[2] = &core.Prediction{GameID: 2, PredictedWinnerID: 3}
	// Week 2: elo picks wrong (home), AP's ranked pick (away) is right.
	predRepo.byGame[3] = &core.Prediction{GameID: 3, PredictedWinnerID: 5}

	appoll := &fakeAPPollRepo{ranks: map[core.TeamID]int{
		1: 10, 2: 3, // week 1, game 1: team 2 is higher-ranked (lower number), so AP favors team 2
		3: 2, 4: 15, // week 1, game 2: team 3 is higher-ranked, AP favors team 3
		5: 20, 6: 1, // week 2, game 3: team 6 is higher-ranked, AP favors team 6
	}}

	games := &fakeGameSource{games: []core.Game{
		{ID: 1, Season: 2025, Week: 1, HomeID: 1, AwayID: 2, HomeScore: 24, AwayScore: 17, IsProcessed: true},
		{ID: 2, Season: 2025, Week: 1, HomeID: 3, AwayID: 4, HomeScore: 30, AwayScore: 10, IsProcessed: true},
		{ID: 3, Season: 2025, Week: 2, HomeID: 5, AwayID: 6, HomeScore: 14, AwayScore: 21, IsProcessed: true},
	}}

	engine := NewEngine(predRepo, nil, appoll, nil)

	cmp, err := engine.CompareToAP(context.Background(), games, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cmp.ByWeek) != 2 {
		t.Fatalf("expected 2 weeks of results, got %d", len(cmp.ByWeek))
	}

	week1 := cmp.ByWeek[0]
	if week1.Week != 1 {
		t.Fatalf("expected first entry to be week 1, got %d", week1.Week)
	}
	if week1.EloOnlyCorrect != 1 || week1.BothCorrect != 1 {
		t.Errorf("expected week 1 to have 1 elo-only-correct and 1 both-correct, got %+v", week1)
	}

	week2 := cmp.ByWeek[1]
	if week2.APOnlyCorrect != 1 {
		t.Errorf("expected week 2's upset to be ap-only-correct, got %+v", week2)
	}

	if len(cmp.Disagreements) != 2 {
		t.Fatalf("expected 2 disagreements (games 1 and 3), got %d: %+v", len(cmp.Disagreements), cmp.Disagreements)
	}
}

func TestCompareToAPSkipsGamesMissingPollDataOrPrediction(t *testing.T) {
	predRepo := newFakePredictionRepo()
	appoll := &fakeAPPollRepo{ranks: map[core.TeamID]int{}}

	games := &fakeGameSource{games: []core.Game{
		{ID: 1, Season: 2025, Week: 1, HomeID: 1, AwayID: 2, HomeScore: 24, AwayScore: 17, IsProcessed: true},
		{ID: 2, Season: 2025, Week: 1, HomeID: 3, AwayID: 4, HomeScore: 0, AwayScore: 0, IsProcessed: false},
	}}

	engine := NewEngine(predRepo, nil, appoll, nil)

	cmp, err := engine.CompareToAP(context.Background(), games, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.ByWeek) != 0 {
		t.Errorf("expected no weeks with neither predictions nor poll data, got %+v", cmp.ByWeek)
	}
}

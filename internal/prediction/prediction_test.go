package prediction

import (
	"context"
	"testing"

	"cfbranker.dev/cfb/internal/core"
)

func TestPredictHomeFavored(t *testing.T) {
	draft := Predict(1800, 1500, 1, 2, false)

	if draft.PredictedWinnerID != 1 {
		t.Fatalf("expected home team to be favored, got winner %d", draft.PredictedWinnerID)
	}
	if draft.HomeWinProbability <= draft.AwayWinProbability {
		t.Fatalf("expected home win probability to exceed away, got home=%v away=%v", draft.HomeWinProbability, draft.AwayWinProbability)
	}
	if draft.Confidence != core.ConfidenceHigh {
		t.Errorf("expected high confidence for a 300-point gap plus home field, got %v", draft.Confidence)
	}
	if draft.PredictedHomeScore <= draft.PredictedAwayScore {
		t.Errorf("expected predicted home score to exceed away score, got home=%d away=%d", draft.PredictedHomeScore, draft.PredictedAwayScore)
	}
}

func TestPredictAwayFavoredOnNeutralSite(t *testing.T) {
	draft := Predict(1500, 1500, 1, 2, true)

	if draft.HomeWinProbability != draft.AwayWinProbability {
		t.Errorf("expected a dead heat on a neutral site between equal ratings, got home=%v away=%v", draft.HomeWinProbability, draft.AwayWinProbability)
	}

	awayFavored := Predict(1500, 1700, 1, 2, true)
	if awayFavored.PredictedWinnerID != 2 {
		t.Fatalf("expected away team to be favored on neutral site, got winner %d", awayFavored.PredictedWinnerID)
	}
}

func TestPredictHomeFieldAdvantageNarrowsAwayEdge(t *testing.T) {
	neutral := Predict(1500, 1540, 1, 2, true)
	atHome := Predict(1500, 1540, 1, 2, false)

	if atHome.AwayWinProbability >= neutral.AwayWinProbability {
		t.Errorf("home field advantage should shrink the away team's win probability: neutral=%v atHome=%v", neutral.AwayWinProbability, atHome.AwayWinProbability)
	}
}

func TestPredictProbabilitiesSumToOne(t *testing.T) {
	draft := Predict(1620, 1580, 1, 2, false)
	sum := draft.HomeWinProbability + draft.AwayWinProbability
	if sum < 0.9999 || sum > 1.0001 {
		t.Fatalf("expected win probabilities to sum to 1, got %v", sum)
	}
}

func TestPredictLowConfidenceOnCloseMatchup(t *testing.T) {
	draft := Predict(1500, 1490, 1, 2, true)
	if draft.Confidence != core.ConfidenceLow {
		t.Errorf("expected low confidence on a near-even neutral-site matchup, got %v", draft.Confidence)
	}
}

type fakePredictionRepo struct {
	byGame map[core.GameID]*core.Prediction
}

func newFakePredictionRepo() *fakePredictionRepo {
	return &fakePredictionRepo{byGame: map[core.GameID]*core.Prediction{}}
}

func (f *fakePredictionRepo) GetByGameID(ctx context.Context, gameID core.GameID) (*core.Prediction, error) {
	p, ok := f.byGame[gameID]
	if !ok {
		return nil, core.NewNotFoundError("prediction", "")
	}
	return p, nil
}

func (f *fakePredictionRepo) List(ctx context.Context, filter core.PredictionFilter) ([]core.Prediction, error) {
	var out []core.Prediction
	for _, p := range f.byGame {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePredictionRepo) Create(ctx context.Context, p *core.Prediction) error {
	if _, exists := f.byGame[p.GameID]; exists {
		return core.NewDataIntegrityError("duplicate prediction", nil)
	}
	cp := *p
	f.byGame[p.GameID] = &cp
	return nil
}

func (f *fakePredictionRepo) SetOutcome(ctx context.Context, gameID core.GameID, correct core.TriState) error {
	p, ok := f.byGame[gameID]
	if !ok {
		return core.NewNotFoundError("prediction", "")
	}
	p.WasCorrect = correct
	return nil
}

func (f *fakePredictionRepo) Accuracy(ctx context.Context, filter core.PredictionFilter) (total, resolved, correct int, err error) {
	for _, p := range f.byGame {
		total++
		if v, ok := p.WasCorrect.Bool(); ok {
			resolved++
			if v {
				correct++
			}
		}
	}
	return total, resolved, correct, nil
}

func TestEngineCreateAndStoreSkipsExisting(t *testing.T) {
	repo := newFakePredictionRepo()
	engine := NewEngine(repo, nil, nil, nil)

	game := &core.Game{ID: 1, HomeID: 1, AwayID: 2}
	home := &core.Team{ID: 1, CurrentRating: 1600}
	away := &core.Team{ID: 2, CurrentRating: 1500}

	if err := engine.CreateAndStore(context.Background(), game, home, away); err != nil {
		t.Fatalf("unexpected error on first create: %v", err)
	}
	if len(repo.byGame) != 1 {
		t.Fatalf("expected exactly one stored prediction, got %d", len(repo.byGame))
	}

	if err := engine.CreateAndStore(context.Background(), game, home, away); err != nil {
		t.Fatalf("expected re-calling CreateAndStore on an existing prediction to be a no-op, got %v", err)
	}
	if len(repo.byGame) != 1 {
		t.Fatalf("expected no duplicate prediction row, got %d", len(repo.byGame))
	}
}

func TestEngineEvaluateResolvesCorrectness(t *testing.T) {
	repo := newFakePredictionRepo()
	engine := NewEngine(repo, nil, nil, nil)

	repo.byGame[1] = &core.Prediction{GameID: 1, PredictedWinnerID: 10, WasCorrect: core.Unresolved}

	game := &core.Game{ID: 1, HomeID: 10, AwayID: 20, HomeScore: 28, AwayScore: 14}
	if err := engine.Evaluate(context.Background(), game); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := repo.byGame[1].WasCorrect.Bool()
	if !ok || !v {
		t.Fatalf("expected prediction to resolve as correct, got ok=%v value=%v", ok, v)
	}
}

func TestEngineEvaluateSkipsExcludedGames(t *testing.T) {
	repo := newFakePredictionRepo()
	engine := NewEngine(repo, nil, nil, nil)
	repo.byGame[1] = &core.Prediction{GameID: 1, PredictedWinnerID: 10, WasCorrect: core.Unresolved}

	game := &core.Game{ID: 1, HomeID: 10, AwayID: 20, HomeScore: 14, AwayScore: 28, ExcludedFromRankings: true}
	if err := engine.Evaluate(context.Background(), game); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.byGame[1].WasCorrect.Bool(); ok {
		t.Error("expected an excluded game's prediction to remain unresolved")
	}
}

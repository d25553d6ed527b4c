package core

import (
	"context"
	"time"
)

// TeamRepository handles team persistence. Non-rating fields are owned by
// the ingestion pipeline; rating and record fields are owned by the
// ranking service. Both halves live on the same row, written by different
// callers.
type TeamRepository interface {
	GetByID(ctx context.Context, id TeamID) (*Team, error)
	GetByName(ctx context.Context, name string) (*Team, error)
	List(ctx context.Context, filter TeamFilter) ([]Team, error)
	Count(ctx context.Context, filter TeamFilter) (int, error)

	// UpsertIngested creates or updates the non-rating fields of a team by
	// unique name, leaving rating/record fields untouched on update.
	UpsertIngested(ctx context.Context, t *Team) (TeamID, error)

	// UpdateRating persists current_rating, wins, and losses; called only
	// by the ranking service under the writer lock.
	UpdateRating(ctx context.Context, id TeamID, currentRating float64, wins, losses int) error

	// ResetToInitial sets current_rating = initial_rating and wins =
	// losses = 0 for every team; it is not limited to one season.
	ResetToInitial(ctx context.Context) error

	// SetInitialRating persists a freshly computed initial_rating and
	// mirrors it into current_rating.
	SetInitialRating(ctx context.Context, id TeamID, initialRating float64) error
}

// GameRepository manages scheduled and played matchups.
type GameRepository interface {
	GetByID(ctx context.Context, id GameID) (*Game, error)
	List(ctx context.Context, filter GameFilter) ([]Game, error)
	Count(ctx context.Context, filter GameFilter) (int, error)

	// UpsertIngested applies the ingestion pipeline's upsert semantics for
	// (season, home_id, away_id, week): new rows start unprocessed; an
	// existing unprocessed row has scores/date/neutral-site refreshed; an
	// existing processed row has only schedule metadata refreshed. The
	// second return is a non-fatal divergence warning (nil when the
	// incoming values agree with what is stored, or when there was no
	// prior row); the third is a fatal error.
	UpsertIngested(ctx context.Context, g *Game) (id GameID, divergence error, err error)

	// ListUnprocessedChronological returns every unprocessed game in a
	// season, scheduled or scored, ordered by (week, game_date, id) for
	// replay. Callers branch on IsScheduled to decide whether a game is
	// ready for prediction-creation only or for processing.
	ListUnprocessedChronological(ctx context.Context, season SeasonYear) ([]Game, error)

	// ListBySeason returns every game in a season ordered the same way,
	// used by recompute_season to reset processing state.
	ListBySeason(ctx context.Context, season SeasonYear) ([]Game, error)

	// MarkProcessed persists the final processed state of a single game:
	// is_processed, excluded_from_rankings, and both rating deltas. Called
	// inside the same transaction as the two TeamRepository.UpdateRating
	// calls it accompanies.
	MarkProcessed(ctx context.Context, id GameID, excluded bool, homeDelta, awayDelta float64) error

	// ResetProcessing clears is_processed and both deltas for every game
	// in a season, used by recompute_season.
	ResetProcessing(ctx context.Context, season SeasonYear) error
}

// TxManager runs fn inside a single storage transaction. Repository
// methods invoked with the context TxManager passes to fn participate in
// that same transaction; see ranking.Service for the orchestration this
// enables around process_game.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeasonRepository manages the single active-season record.
type SeasonRepository interface {
	GetActive(ctx context.Context) (*Season, error)
	GetByYear(ctx context.Context, year SeasonYear) (*Season, error)
	List(ctx context.Context) ([]Season, error)

	// Upsert creates or updates a season row, deactivating any previously
	// active season when activating a new one.
	Upsert(ctx context.Context, s *Season) error

	SetCurrentWeek(ctx context.Context, year SeasonYear, week int) error
}

// RankingSnapshotRepository manages immutable per-week ranking history.
type RankingSnapshotRepository interface {
	Save(ctx context.Context, snapshots []RankingSnapshot) error
	History(ctx context.Context, teamID TeamID, season SeasonYear) ([]RankingSnapshot, error)
}

// PredictionRepository manages stored pre-game forecasts.
type PredictionRepository interface {
	GetByGameID(ctx context.Context, gameID GameID) (*Prediction, error)
	List(ctx context.Context, filter PredictionFilter) ([]Prediction, error)

	// Create writes a new Prediction row; fails with a data-integrity
	// error if one already exists for the game.
	Create(ctx context.Context, p *Prediction) error

	// SetOutcome persists the resolved was_correct value.
	SetOutcome(ctx context.Context, gameID GameID, correct TriState) error

	// Accuracy aggregates resolved predictions matching filter.
	Accuracy(ctx context.Context, filter PredictionFilter) (total, resolved, correct int, err error)
}

// APPollRepository manages AP top-25 rankings used as a prediction
// baseline.
type APPollRepository interface {
	Upsert(ctx context.Context, r *APPollRanking) error
	ListByWeek(ctx context.Context, season SeasonYear, week int) ([]APPollRanking, error)
	GetTeamRank(ctx context.Context, season SeasonYear, week int, teamID TeamID) (*APPollRanking, error)
}

// APIUsageRepository tracks and aggregates calls against the external
// provider for quota enforcement and the usage dashboard.
type APIUsageRepository interface {
	Record(ctx context.Context, u *APIUsage) error

	// CountForMonth returns the number of recorded calls in monthKey
	// (YYYY-MM), used by the quota gate.
	CountForMonth(ctx context.Context, monthKey string) (int, error)

	// TopEndpoints returns call counts grouped by endpoint for monthKey,
	// most-called first.
	TopEndpoints(ctx context.Context, monthKey string, limit int) ([]EndpointUsage, error)
}

// EndpointUsage is one row of a top-endpoints breakdown.
type EndpointUsage struct {
	Endpoint string `json:"endpoint"`
	Count    int    `json:"count"`
}

// UpdateTaskRepository manages the append-only task registry.
type UpdateTaskRepository interface {
	Create(ctx context.Context, t *UpdateTask) error
	GetByID(ctx context.Context, taskID string) (*UpdateTask, error)

	// GetRunning returns the currently running task, if any, used to
	// enforce the single-pending-task invariant.
	GetRunning(ctx context.Context) (*UpdateTask, error)

	TransitionToRunning(ctx context.Context, taskID string, startedAt time.Time) error
	TransitionToCompleted(ctx context.Context, taskID string, completedAt time.Time, result TaskResult) error
	TransitionToFailed(ctx context.Context, taskID string, completedAt time.Time, taskErr TaskError) error
}

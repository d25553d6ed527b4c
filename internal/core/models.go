// Package core defines the domain entities, identifiers, and repository
// interfaces shared by the ranking engine, prediction engine, ingestion
// pipeline, and HTTP layer. Loads are explicit queries against plain
// records; there is no lazy loading or object graph.
package core

import "time"

// ConferenceTier classifies a team's competitive strength class. It drives
// the Elo conference multiplier and the FCS-exclusion policy; it carries
// no other meaning.
type ConferenceTier string

const (
	TierP5  ConferenceTier = "P5"
	TierG5  ConferenceTier = "G5"
	TierFCS ConferenceTier = "FCS"
)

// UnrankedSentinel is the recruiting/transfer rank value meaning "unranked".
const UnrankedSentinel = 999

// TeamID identifies a team by opaque stable integer.
type TeamID int64

// SeasonYear is a season identified by its year.
type SeasonYear int

// GameType classifies a game for exclusion policy and display.
type GameType string

const (
	GameRegular                GameType = "regular"
	GameConferenceChampionship GameType = "conference_championship"
	GameBowl                   GameType = "bowl"
	GamePlayoff                GameType = "playoff"
)

// GameID identifies a game by opaque stable integer.
type GameID int64

// Team is a persistent team record. CurrentRating and win/loss counts are
// owned exclusively by the ranking service; every other field is owned by
// the ingestion pipeline.
type Team struct {
	ID         TeamID         `json:"id"`
	Name       string         `json:"name"`
	Tier       ConferenceTier `json:"conference_tier"`
	Conference string         `json:"conference_name"`

	RecruitingRank      int     `json:"recruiting_rank"`
	TransferRank        int     `json:"transfer_rank"`
	ReturningProduction float64 `json:"returning_production"`

	InitialRating float64 `json:"initial_rating"`
	CurrentRating float64 `json:"current_rating"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// IsFCS reports whether the team's tier is FCS.
func (t *Team) IsFCS() bool {
	return t.Tier == TierFCS
}

// Game is a persistent scheduled-or-played matchup, unique by
// (Season, HomeID, AwayID, Week). IsProcessed, HomeRatingChange, and
// AwayRatingChange are owned exclusively by the ranking service; every
// other field is owned by the ingestion pipeline.
type Game struct {
	ID     GameID     `json:"id"`
	Season SeasonYear `json:"season"`
	Week   int        `json:"week"`

	HomeID TeamID `json:"home_id"`
	AwayID TeamID `json:"away_id"`

	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`

	IsNeutralSite bool `json:"is_neutral_site"`
	IsProcessed   bool `json:"is_processed"`

	ExcludedFromRankings bool       `json:"excluded_from_rankings"`
	GameType             GameType   `json:"game_type"`
	PostseasonName       string     `json:"postseason_name,omitempty"`
	GameDate             *time.Time `json:"game_date,omitempty"`

	HomeRatingChange float64 `json:"home_rating_change"`
	AwayRatingChange float64 `json:"away_rating_change"`
}

// IsScheduled reports whether both scores are absent (scheduled, unplayed).
func (g *Game) IsScheduled() bool {
	return g.HomeScore == 0 && g.AwayScore == 0
}

// IsPostseasonWeek reports whether the game's week falls in the
// postseason range (16..19).
func (g *Game) IsPostseasonWeek() bool {
	return g.Week >= 16 && g.Week <= 19
}

// Season tracks the single active season and its current week. At most
// one Season row has IsActive true.
type Season struct {
	Year        SeasonYear `json:"year"`
	CurrentWeek int        `json:"current_week"`
	IsActive    bool       `json:"is_active"`
}

// RankingSnapshot is an immutable historical record of a team's ranking
// state at a given (season, week).
type RankingSnapshot struct {
	TeamID  TeamID     `json:"team_id"`
	Season  SeasonYear `json:"season"`
	Week    int        `json:"week"`
	Rank    int        `json:"rank"`
	Rating  float64    `json:"rating"`
	Wins    int        `json:"wins"`
	Losses  int        `json:"losses"`
	SOS     *float64   `json:"sos,omitempty"`
	SOSRank *int       `json:"sos_rank,omitempty"`
}

// Confidence buckets a prediction's win-probability margin.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// TriState models a value that can be true, false, or not yet known.
// Prediction.WasCorrect is Unresolved iff the referenced game is not
// processed, or is processed but excluded from rankings.
type TriState int

const (
	Unresolved TriState = iota
	ResultTrue
	ResultFalse
)

// Bool reports the resolved value; ok is false when Unresolved.
func (t TriState) Bool() (value bool, ok bool) {
	switch t {
	case ResultTrue:
		return true, true
	case ResultFalse:
		return false, true
	default:
		return false, false
	}
}

// TriStateFromBool resolves a TriState to a known value.
func TriStateFromBool(b bool) TriState {
	if b {
		return ResultTrue
	}
	return ResultFalse
}

// Prediction is a stored pre-game forecast, unique by GameID. It is owned
// exclusively by the prediction engine.
type Prediction struct {
	GameID GameID `json:"game_id"`

	PredictedWinnerID  TeamID `json:"predicted_winner_id"`
	PredictedHomeScore int    `json:"predicted_home_score"`
	PredictedAwayScore int    `json:"predicted_away_score"`

	HomeWinProbability float64 `json:"home_win_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`

	PreGameHomeRating float64 `json:"pre_game_home_rating"`
	PreGameAwayRating float64 `json:"pre_game_away_rating"`

	Confidence Confidence `json:"confidence"`
	WasCorrect TriState   `json:"-"`
}

// APPollRanking is one team's AP top-25 slot for a given season/week,
// unique by (Season, Week, TeamID).
type APPollRanking struct {
	Season          SeasonYear `json:"season"`
	Week            int        `json:"week"`
	Rank            int        `json:"rank"`
	TeamID          TeamID     `json:"team_id"`
	FirstPlaceVotes int        `json:"first_place_votes"`
	Points          int        `json:"points"`
}

// APIUsage is one recorded call against the external provider, aggregated
// by (MonthKey, Endpoint) for quota enforcement.
type APIUsage struct {
	MonthKey  string        `json:"month_key"`
	Endpoint  string        `json:"endpoint"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// UpdateTaskTrigger identifies what caused an UpdateTask to be enqueued.
type UpdateTaskTrigger string

const (
	TriggerScheduled UpdateTaskTrigger = "scheduled"
	TriggerManual    UpdateTaskTrigger = "manual"
)

// UpdateTaskStatus is a state in the UpdateTask lifecycle.
type UpdateTaskStatus string

const (
	StatusPending   UpdateTaskStatus = "pending"
	StatusRunning   UpdateTaskStatus = "running"
	StatusCompleted UpdateTaskStatus = "completed"
	StatusFailed    UpdateTaskStatus = "failed"
)

// TaskResult summarizes a successfully completed update task.
type TaskResult struct {
	GamesImported        int `json:"games_imported"`
	TeamsTouched         int `json:"teams_touched"`
	PredictionsCreated   int `json:"predictions_created"`
	PredictionsEvaluated int `json:"predictions_evaluated"`
}

// TaskErrorKind categorizes why an UpdateTask failed.
type TaskErrorKind string

const (
	ErrKindInactiveSeason TaskErrorKind = "inactive_season"
	ErrKindNoCurrentWeek  TaskErrorKind = "no_current_week"
	ErrKindQuotaExhausted TaskErrorKind = "quota_exhausted"
	ErrKindProviderFatal  TaskErrorKind = "provider_fatal"
	ErrKindDataIntegrity  TaskErrorKind = "data_integrity"
	ErrKindCancelled      TaskErrorKind = "cancelled"
)

// TaskError is the structured failure reason recorded on a failed task.
type TaskError struct {
	Kind    TaskErrorKind `json:"kind"`
	Message string        `json:"message"`
}

// UpdateTask is an append-only task row, mutated only through the status
// transitions in §4.6.
type UpdateTask struct {
	TaskID      string            `json:"task_id"`
	Trigger     UpdateTaskTrigger `json:"trigger"`
	Status      UpdateTaskStatus  `json:"status"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Result      *TaskResult       `json:"result,omitempty"`
	Error       *TaskError        `json:"error,omitempty"`
}

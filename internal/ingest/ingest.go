// Package ingest pulls teams, games, and polls from the external provider
// and upserts them idempotently, then replays newly available games
// through the ranking and prediction engines in chronological order.
package ingest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/prediction"
	"cfbranker.dev/cfb/internal/provider"
	"cfbranker.dev/cfb/internal/ranking"
)

// Pipeline is the ingestion pipeline described in §4.4.
type Pipeline struct {
	client     *provider.Client
	teams      core.TeamRepository
	games      core.GameRepository
	seasons    core.SeasonRepository
	appoll     core.APPollRepository
	ranking    *ranking.Service
	prediction *prediction.Engine
	log        *log.Logger
}

func NewPipeline(client *provider.Client, teams core.TeamRepository, games core.GameRepository, seasons core.SeasonRepository, appoll core.APPollRepository, rankingSvc *ranking.Service, predictionEngine *prediction.Engine, logger *log.Logger) *Pipeline {
	return &Pipeline{
		client:     client,
		teams:      teams,
		games:      games,
		seasons:    seasons,
		appoll:     appoll,
		ranking:    rankingSvc,
		prediction: predictionEngine,
		log:        logger,
	}
}

// RefreshTeams upserts every team from the provider by unique name. Rating
// fields are never touched here; that is reset_preseason's job.
func (p *Pipeline) RefreshTeams(ctx context.Context, year core.SeasonYear) (int, error) {
	records, err := p.client.GetTeams(ctx, year)
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, rec := range records {
		t := &core.Team{
			Name:           rec.Name,
			Tier:           core.ConferenceTier(rec.ConferenceTier),
			Conference:     rec.ConferenceName,
			RecruitingRank: normalizeRank(rec.RecruitingRank),
			TransferRank:   normalizeRank(rec.TransferRank),
			ReturningProduction: rec.ReturningProduction,
		}
		if _, err := p.teams.UpsertIngested(ctx, t); err != nil {
			return touched, core.NewDataIntegrityError(fmt.Sprintf("refresh_teams: upsert %q", rec.Name), err)
		}
		touched++
	}
	return touched, nil
}

func normalizeRank(rank int) int {
	if rank <= 0 {
		return core.UnrankedSentinel
	}
	return rank
}

// RefreshGames upserts regular-season and postseason games up to a given
// week, recomputing excluded_from_rankings from each participant's tier
// and the game's type on every upsert.
func (p *Pipeline) RefreshGames(ctx context.Context, year core.SeasonYear, upToWeek int) (int, error) {
	imported := 0

	for _, seasonType := range []provider.SeasonType{provider.SeasonRegular, provider.SeasonPostseason} {
		records, err := p.client.GetGames(ctx, year, seasonType, nil)
		if err != nil {
			return imported, err
		}

		for _, rec := range records {
			if rec.Week > upToWeek {
				continue
			}
			if (rec.HomeScore == nil) != (rec.AwayScore == nil) {
				p.log.Warn("ingest: incomplete score pair treated as scheduled", "home_team", rec.HomeTeam, "away_team", rec.AwayTeam, "week", rec.Week)
			}

			home, err := p.teams.GetByName(ctx, rec.HomeTeam)
			if err != nil {
				return imported, core.NewDataIntegrityError(fmt.Sprintf("refresh_games: unknown home team %q", rec.HomeTeam), err)
			}
			away, err := p.teams.GetByName(ctx, rec.AwayTeam)
			if err != nil {
				return imported, core.NewDataIntegrityError(fmt.Sprintf("refresh_games: unknown away team %q", rec.AwayTeam), err)
			}

			homeScore, awayScore := 0, 0
			if rec.HomeScore != nil && rec.AwayScore != nil {
				homeScore, awayScore = *rec.HomeScore, *rec.AwayScore
			}

			gameType := core.GameType(rec.GameType)
			excluded := home.IsFCS() || away.IsFCS() || IsPostseasonExcludedByDefault(gameType)

			g := &core.Game{
				Season:               year,
				Week:                 rec.Week,
				HomeID:               home.ID,
				AwayID:               away.ID,
				HomeScore:            homeScore,
				AwayScore:            awayScore,
				IsNeutralSite:        rec.IsNeutralSite,
				ExcludedFromRankings: excluded,
				GameType:             gameType,
				PostseasonName:       rec.PostseasonName,
				GameDate:             rec.GameDate,
			}

			_, divergence, err := p.games.UpsertIngested(ctx, g)
			if err != nil {
				return imported, err
			}
			if divergence != nil {
				p.log.Warn("ingest: re-ingested game diverges from processed record", "home_team", rec.HomeTeam, "away_team", rec.AwayTeam, "week", rec.Week, "detail", divergence)
			}
			imported++
		}
	}

	return imported, nil
}

// IsPostseasonExcludedByDefault implements the Open Question decision
// recorded in DESIGN.md: playoff and bowl games default to excluded
// unless a future configuration toggle enables them. Exported so the
// admin-facing game-entry endpoint can apply the same exclusion policy as
// the ingestion pipeline.
func IsPostseasonExcludedByDefault(gameType core.GameType) bool {
	return gameType == core.GamePlayoff || gameType == core.GameBowl
}

// RefreshPolls upserts the AP top-25 for a given week.
func (p *Pipeline) RefreshPolls(ctx context.Context, year core.SeasonYear, week int) (int, error) {
	entries, err := p.client.GetAPPoll(ctx, year, week)
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, e := range entries {
		team, err := p.teams.GetByName(ctx, e.Team)
		if err != nil {
			return touched, core.NewDataIntegrityError(fmt.Sprintf("refresh_polls: unknown team %q", e.Team), err)
		}

		r := &core.APPollRanking{
			Season:          year,
			Week:            week,
			Rank:            e.Rank,
			TeamID:          team.ID,
			FirstPlaceVotes: e.FirstPlaceVotes,
			Points:          e.Points,
		}
		if err := p.appoll.Upsert(ctx, r); err != nil {
			return touched, err
		}
		touched++
	}
	return touched, nil
}

// ReplayResult summarizes one replay pass for the task result blob.
type ReplayResult struct {
	PredictionsCreated   int
	PredictionsEvaluated int
}

// ReplayNew walks every unprocessed game in chronological order. Games
// still scheduled (both scores absent) get a prediction created if none
// exists yet — predictions are created for future games only, never for a
// game whose scores already arrived with no prior prediction on record.
// Games with scores present are processed through the ranking service and
// immediately evaluated.
func (p *Pipeline) ReplayNew(ctx context.Context, season core.SeasonYear) (ReplayResult, error) {
	var result ReplayResult

	games, err := p.games.ListUnprocessedChronological(ctx, season)
	if err != nil {
		return result, err
	}

	for _, g := range games {
		home, err := p.teams.GetByID(ctx, g.HomeID)
		if err != nil {
			return result, core.NewDataIntegrityError("replay_new: home team lookup", err)
		}
		away, err := p.teams.GetByID(ctx, g.AwayID)
		if err != nil {
			return result, core.NewDataIntegrityError("replay_new: away team lookup", err)
		}

		if g.IsScheduled() {
			if err := p.prediction.CreateAndStore(ctx, &g, home, away); err != nil {
				p.log.Error("replay_new: prediction creation failed, continuing batch", "game_id", g.ID, "err", err)
				continue
			}
			result.PredictionsCreated++
			continue
		}

		if err := p.ranking.ProcessGame(ctx, g.ID); err != nil {
			p.log.Error("replay_new: game processing aborted for this game", "game_id", g.ID, "err", err)
			continue
		}

		processed, err := p.games.GetByID(ctx, g.ID)
		if err != nil {
			return result, err
		}
		if err := p.prediction.Evaluate(ctx, processed); err != nil {
			p.log.Error("replay_new: prediction evaluation failed, continuing batch", "game_id", g.ID, "err", err)
			continue
		}
		result.PredictionsEvaluated++
	}

	return result, nil
}

// RunOnceResult summarizes a full convenience-wrapper pass.
type RunOnceResult struct {
	TeamsTouched         int
	GamesImported        int
	PredictionsCreated   int
	PredictionsEvaluated int
}

// RunOnce applies refresh_teams, refresh_games, refresh_polls, and
// replay_new for the active season up to its current week.
func (p *Pipeline) RunOnce(ctx context.Context) (RunOnceResult, error) {
	var result RunOnceResult

	season, err := p.seasons.GetActive(ctx)
	if err != nil {
		return result, err
	}

	teamsTouched, err := p.RefreshTeams(ctx, season.Year)
	if err != nil {
		return result, err
	}
	result.TeamsTouched = teamsTouched

	gamesImported, err := p.RefreshGames(ctx, season.Year, season.CurrentWeek)
	if err != nil {
		return result, err
	}
	result.GamesImported = gamesImported

	if _, err := p.RefreshPolls(ctx, season.Year, season.CurrentWeek); err != nil {
		return result, err
	}

	replay, err := p.ReplayNew(ctx, season.Year)
	if err != nil {
		return result, err
	}
	result.PredictionsCreated = replay.PredictionsCreated
	result.PredictionsEvaluated = replay.PredictionsEvaluated

	return result, nil
}

// Package ranking orchestrates game processing, strength-of-schedule
// computation, and ranking snapshots on top of the pure elo package. It
// owns the process-wide writer lock described in the concurrency model:
// at most one mutation of team ratings, win/loss records, or game
// processed-state happens at a time.
package ranking

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/elo"
)

// Service holds no state beyond the writer lock and repository handles, as
// required: every read reconstructs its answer from the store.
type Service struct {
	tx        core.TxManager
	teams     core.TeamRepository
	games     core.GameRepository
	snapshots core.RankingSnapshotRepository
	log       *log.Logger

	writerMu sync.Mutex
}

func NewService(tx core.TxManager, teams core.TeamRepository, games core.GameRepository, snapshots core.RankingSnapshotRepository, logger *log.Logger) *Service {
	return &Service{tx: tx, teams: teams, games: games, snapshots: snapshots, log: logger}
}

// ProcessGame transitions a game from unprocessed to processed, applying
// Elo deltas and updating both teams' records inside a single
// transaction. Idempotent: processing an already-processed game is a
// no-op.
func (s *Service) ProcessGame(ctx context.Context, gameID core.GameID) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		game, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game.IsProcessed {
			return nil
		}

		home, err := s.teams.GetByID(ctx, game.HomeID)
		if err != nil {
			return core.NewDataIntegrityError("process_game: home team lookup", err)
		}
		away, err := s.teams.GetByID(ctx, game.AwayID)
		if err != nil {
			return core.NewDataIntegrityError("process_game: away team lookup", err)
		}

		excluded := game.ExcludedFromRankings || home.IsFCS() || away.IsFCS()
		if excluded {
			return s.games.MarkProcessed(ctx, gameID, true, 0, 0)
		}

		result := elo.Update(home.CurrentRating, away.CurrentRating, game.HomeScore, game.AwayScore, home.Tier, away.Tier, game.IsNeutralSite)

		homeWins, homeLosses := home.Wins, home.Losses
		awayWins, awayLosses := away.Wins, away.Losses
		switch {
		case game.HomeScore > game.AwayScore:
			homeWins++
			awayLosses++
		case game.AwayScore > game.HomeScore:
			awayWins++
			homeLosses++
		}

		if err := s.teams.UpdateRating(ctx, home.ID, home.CurrentRating+result.HomeDelta, homeWins, homeLosses); err != nil {
			return err
		}
		if err := s.teams.UpdateRating(ctx, away.ID, away.CurrentRating+result.AwayDelta, awayWins, awayLosses); err != nil {
			return err
		}

		return s.games.MarkProcessed(ctx, gameID, false, result.HomeDelta, result.AwayDelta)
	})
}

// RecomputeSeason resets every team to its initial rating and record, then
// replays every game in the season chronologically through ProcessGame.
func (s *Service) RecomputeSeason(ctx context.Context, season core.SeasonYear) error {
	if err := s.teams.ResetToInitial(ctx); err != nil {
		return err
	}
	if err := s.games.ResetProcessing(ctx, season); err != nil {
		return err
	}

	games, err := s.games.ListBySeason(ctx, season)
	if err != nil {
		return err
	}
	sortChronological(games)

	for _, g := range games {
		if g.IsScheduled() {
			continue
		}
		if err := s.ProcessGame(ctx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// ResetPreseason recomputes every team's initial_rating from its current
// preseason inputs and resets current_rating to match. Callers must
// invoke RecomputeSeason afterward if any games were already processed.
func (s *Service) ResetPreseason(ctx context.Context, season core.SeasonYear) error {
	teams, err := s.teams.List(ctx, core.TeamFilter{})
	if err != nil {
		return err
	}

	for _, t := range teams {
		rating := elo.PreseasonRating(t.Tier, t.RecruitingRank, t.TransferRank, t.ReturningProduction)
		if err := s.teams.SetInitialRating(ctx, t.ID, rating); err != nil {
			return err
		}
	}
	return nil
}

// RankedTeam is one row of a computed ranking, combining a team's stored
// state with its derived rank and strength of schedule.
type RankedTeam struct {
	Team    core.Team
	Rank    int
	SOS     *float64
	SOSRank *int
}

// GetCurrentRankings returns teams sorted by current_rating descending,
// ranked 1..N, with SOS computed across each team's processed,
// non-excluded games and a separate SOS-based ordering.
func (s *Service) GetCurrentRankings(ctx context.Context, season core.SeasonYear, limit int) ([]RankedTeam, error) {
	teams, err := s.teams.List(ctx, core.TeamFilter{})
	if err != nil {
		return nil, err
	}

	games, err := s.games.ListBySeason(ctx, season)
	if err != nil {
		return nil, err
	}

	ratingByTeam := make(map[core.TeamID]float64, len(teams))
	for _, t := range teams {
		ratingByTeam[t.ID] = t.CurrentRating
	}

	sos := computeSOSAll(games, ratingByTeam)

	ranked := make([]RankedTeam, len(teams))
	for i, t := range teams {
		ranked[i] = RankedTeam{Team: t}
		if v, ok := sos[t.ID]; ok {
			val := v
			ranked[i].SOS = &val
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Team.CurrentRating != ranked[j].Team.CurrentRating {
			return ranked[i].Team.CurrentRating > ranked[j].Team.CurrentRating
		}
		return ranked[i].Team.ID < ranked[j].Team.ID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	bySOS := make([]int, len(ranked))
	for i := range bySOS {
		bySOS[i] = i
	}
	sort.SliceStable(bySOS, func(i, j int) bool {
		a, b := ranked[bySOS[i]], ranked[bySOS[j]]
		switch {
		case a.SOS == nil && b.SOS == nil:
			return a.Team.ID < b.Team.ID
		case a.SOS == nil:
			return false
		case b.SOS == nil:
			return true
		case *a.SOS != *b.SOS:
			return *a.SOS > *b.SOS
		default:
			return a.Team.ID < b.Team.ID
		}
	})
	for rank, idx := range bySOS {
		if ranked[idx].SOS == nil {
			continue
		}
		r := rank + 1
		ranked[idx].SOSRank = &r
	}

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ComputeSOS returns a single team's strength of schedule: the mean
// current_rating of opponents across its processed, non-excluded games in
// the season. Returns ok=false if the team has no qualifying games.
func (s *Service) ComputeSOS(ctx context.Context, teamID core.TeamID, season core.SeasonYear) (sos float64, ok bool, err error) {
	teams, err := s.teams.List(ctx, core.TeamFilter{})
	if err != nil {
		return 0, false, err
	}
	ratingByTeam := make(map[core.TeamID]float64, len(teams))
	for _, t := range teams {
		ratingByTeam[t.ID] = t.CurrentRating
	}

	games, err := s.games.ListBySeason(ctx, season)
	if err != nil {
		return 0, false, err
	}

	all := computeSOSAll(games, ratingByTeam)
	v, found := all[teamID]
	return v, found, nil
}

func computeSOSAll(games []core.Game, ratingByTeam map[core.TeamID]float64) map[core.TeamID]float64 {
	sum := map[core.TeamID]float64{}
	count := map[core.TeamID]int{}

	for _, g := range games {
		if !g.IsProcessed || g.ExcludedFromRankings {
			continue
		}
		sum[g.HomeID] += ratingByTeam[g.AwayID]
		count[g.HomeID]++
		sum[g.AwayID] += ratingByTeam[g.HomeID]
		count[g.AwayID]++
	}

	out := make(map[core.TeamID]float64, len(sum))
	for id, c := range count {
		if c > 0 {
			out[id] = sum[id] / float64(c)
		}
	}
	return out
}

// SaveSnapshot writes an immutable RankingSnapshot for every team at the
// current ranking for (season, week).
func (s *Service) SaveSnapshot(ctx context.Context, season core.SeasonYear, week int) error {
	ranked, err := s.GetCurrentRankings(ctx, season, 0)
	if err != nil {
		return err
	}

	snapshots := make([]core.RankingSnapshot, len(ranked))
	for i, r := range ranked {
		snapshots[i] = core.RankingSnapshot{
			TeamID:  r.Team.ID,
			Season:  season,
			Week:    week,
			Rank:    r.Rank,
			Rating:  r.Team.CurrentRating,
			Wins:    r.Team.Wins,
			Losses:  r.Team.Losses,
			SOS:     r.SOS,
			SOSRank: r.SOSRank,
		}
	}
	return s.snapshots.Save(ctx, snapshots)
}

func sortChronological(games []core.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Week != games[j].Week {
			return games[i].Week < games[j].Week
		}
		di, dj := games[i].GameDate, games[j].GameDate
		switch {
		case di == nil && dj == nil:
			return games[i].ID < games[j].ID
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return games[i].ID < games[j].ID
		}
	})
}

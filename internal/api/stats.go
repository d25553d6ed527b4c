package api

import (
	"net/http"

	"cfbranker.dev/cfb/internal/core"
)

// StatsRoutes exposes the system-wide counters used by the landing
// dashboard: how many teams and games are on record and what week the
// active season is currently on.
type StatsRoutes struct {
	teams   core.TeamRepository
	games   core.GameRepository
	seasons core.SeasonRepository
}

func NewStatsRoutes(teams core.TeamRepository, games core.GameRepository, seasons core.SeasonRepository) *StatsRoutes {
	return &StatsRoutes{teams: teams, games: games, seasons: seasons}
}

func (sr *StatsRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/stats", sr.handleStats)
}

// statsResponse reports system counts and current_week, per §6.
type statsResponse struct {
	TeamCount       int              `json:"team_count"`
	GameCount       int              `json:"game_count"`
	ProcessedGames  int              `json:"processed_games"`
	ActiveSeason    *core.SeasonYear `json:"active_season"`
	CurrentWeek     *int             `json:"current_week"`
}

// handleStats godoc
// @Summary Get system stats
// @Description System-wide counts and the active season's current week
// @Tags stats
// @Accept json
// @Produce json
// @Success 200 {object} statsResponse
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (sr *StatsRoutes) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamCount, err := sr.teams.Count(ctx, core.TeamFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	gameCount, err := sr.games.Count(ctx, core.GameFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	processedTrue := true
	processedCount, err := sr.games.Count(ctx, core.GameFilter{Processed: &processedTrue})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := statsResponse{TeamCount: teamCount, GameCount: gameCount, ProcessedGames: processedCount}

	if season, err := sr.seasons.GetActive(ctx); err == nil {
		resp.ActiveSeason = &season.Year
		resp.CurrentWeek = &season.CurrentWeek
	}

	writeJSON(w, http.StatusOK, resp)
}

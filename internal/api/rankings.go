package api

import (
	"net/http"
	"strconv"
	"time"

	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/ranking"
)

type RankingRoutes struct {
	ranking *ranking.Service
	seasons core.SeasonRepository
	history core.RankingSnapshotRepository
	cache   *cache.Client
}

func NewRankingRoutes(rankingSvc *ranking.Service, seasons core.SeasonRepository, history core.RankingSnapshotRepository, cacheClient *cache.Client) *RankingRoutes {
	return &RankingRoutes{ranking: rankingSvc, seasons: seasons, history: history, cache: cacheClient}
}

func (rr *RankingRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/rankings", rr.handleCurrentRankings)
	mux.HandleFunc("GET /v1/rankings/history", rr.handleRankingHistory)
}

// handleCurrentRankings godoc
// @Summary Get current rankings
// @Description List teams ordered by current rating, ranked 1..N, with strength of schedule
// @Tags rankings
// @Accept json
// @Produce json
// @Param season query integer false "Season year (defaults to the active season)"
// @Param limit query integer false "Limit the result to the top N teams"
// @Success 200 {array} ranking.RankedTeam
// @Failure 500 {object} ErrorResponse
// @Router /rankings [get]
func (rr *RankingRoutes) handleCurrentRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	season := core.SeasonYear(getIntQuery(r, "season", 0))
	if season == 0 {
		active, err := rr.seasons.GetActive(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		season = active.Year
	}

	limit := getIntQuery(r, "limit", 0)

	key := rr.cache.ListKey("rankings", cache.NormalizeFilterParams(map[string]any{
		"season": strconv.Itoa(int(season)),
		"limit":  limit,
	}))
	ranked, err := rr.cache.GetOrCompute(ctx, key, 60*time.Second, func() (any, error) {
		return rr.ranking.GetCurrentRankings(ctx, season, limit)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ranked)
}

// handleRankingHistory godoc
// @Summary Get a team's ranking history
// @Description Get a team's immutable week-by-week ranking snapshots for a season
// @Tags rankings
// @Accept json
// @Produce json
// @Param team_id query integer true "Team ID"
// @Param season query integer true "Season year"
// @Success 200 {array} core.RankingSnapshot
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rankings/history [get]
func (rr *RankingRoutes) handleRankingHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamIDStr := r.URL.Query().Get("team_id")
	if teamIDStr == "" {
		writeBadRequest(w, "team_id is required")
		return
	}
	teamID := core.TeamID(getIntQuery(r, "team_id", 0))
	season := core.SeasonYear(getIntQuery(r, "season", 0))

	snapshots, err := rr.history.History(ctx, teamID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

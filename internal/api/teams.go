package api

import (
	"net/http"
	"strconv"

	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/ranking"
)

type TeamRoutes struct {
	repo    core.TeamRepository
	games   core.GameRepository
	ranking *ranking.Service
	cache   *cache.CachedRepository
}

func NewTeamRoutes(repo core.TeamRepository, rankingSvc *ranking.Service, games core.GameRepository, cacheClient *cache.Client) *TeamRoutes {
	return &TeamRoutes{repo: repo, games: games, ranking: rankingSvc, cache: cache.NewCachedRepository(cacheClient, "team")}
}

func (tr *TeamRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/teams", tr.handleListTeams)
	mux.HandleFunc("GET /v1/teams/{id}", tr.handleGetTeam)
	mux.HandleFunc("GET /v1/teams/{id}/sos", tr.handleTeamSOS)
	mux.HandleFunc("GET /v1/teams/{id}/schedule", tr.handleTeamSchedule)
}

// handleListTeams godoc
// @Summary List teams
// @Description List teams with optional conference tier and name filters
// @Tags teams
// @Accept json
// @Produce json
// @Param tier query string false "Conference tier (P5, G5, FCS)"
// @Param conference query string false "Conference name"
// @Param name query string false "Team name search query"
// @Param page query integer false "Page number" default(1)
// @Param per_page query integer false "Results per page" default(50)
// @Success 200 {object} PaginatedResponse
// @Failure 500 {object} ErrorResponse
// @Router /teams [get]
func (tr *TeamRoutes) handleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := core.TeamFilter{
		Conference: r.URL.Query().Get("conference"),
		NameQuery:  r.URL.Query().Get("name"),
		Pagination: core.Pagination{
			Page:    getIntQuery(r, "page", 1),
			PerPage: getIntQuery(r, "per_page", 50),
		},
	}

	if tier := r.URL.Query().Get("tier"); tier != "" {
		t := core.ConferenceTier(tier)
		filter.Tier = &t
	}

	teams, err := tr.repo.List(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := tr.repo.Count(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPaginatedResponse(teams, filter.Pagination.Page, filter.Pagination.PerPage, total))
}

// handleGetTeam godoc
// @Summary Get team by ID
// @Description Get a single team record including current rating and record
// @Tags teams
// @Accept json
// @Produce json
// @Param id path integer true "Team ID"
// @Success 200 {object} core.Team
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /teams/{id} [get]
func (tr *TeamRoutes) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid team id")
		return
	}

	idKey := strconv.FormatInt(id, 10)
	team, err := tr.cache.Entity.GetOrCompute(ctx, idKey, func() (any, error) {
		return tr.repo.GetByID(ctx, core.TeamID(id))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

type sosResponse struct {
	TeamID core.TeamID `json:"team_id"`
	Season core.SeasonYear `json:"season"`
	SOS    *float64    `json:"sos,omitempty"`
}

// handleTeamSOS godoc
// @Summary Get team strength of schedule
// @Description Get a team's strength of schedule for a season, computed from processed, non-excluded games
// @Tags teams
// @Accept json
// @Produce json
// @Param id path integer true "Team ID"
// @Param season query integer true "Season year"
// @Success 200 {object} sosResponse
// @Failure 500 {object} ErrorResponse
// @Router /teams/{id}/sos [get]
func (tr *TeamRoutes) handleTeamSOS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid team id")
		return
	}
	season := core.SeasonYear(getIntQuery(r, "season", 0))

	sos, ok, err := tr.ranking.ComputeSOS(ctx, core.TeamID(id), season)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sosResponse{TeamID: core.TeamID(id), Season: season}
	if ok {
		resp.SOS = &sos
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTeamSchedule godoc
// @Summary Get a team's schedule for a season
// @Description List a team's games for a season, chronological by week, scheduled or played
// @Tags teams
// @Accept json
// @Produce json
// @Param id path integer true "Team ID"
// @Param season query integer true "Season year"
// @Success 200 {array} core.Game
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /teams/{id}/schedule [get]
func (tr *TeamRoutes) handleTeamSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid team id")
		return
	}
	if r.URL.Query().Get("season") == "" {
		writeBadRequest(w, "season is required")
		return
	}
	season := core.SeasonYear(getIntQuery(r, "season", 0))
	teamID := core.TeamID(id)

	games, err := tr.games.List(ctx, core.GameFilter{Season: &season, TeamID: &teamID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

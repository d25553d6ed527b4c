package api

import (
	"net/http"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/ranking"
)

type SeasonRoutes struct {
	repo    core.SeasonRepository
	ranking *ranking.Service
}

func NewSeasonRoutes(repo core.SeasonRepository, rankingSvc *ranking.Service) *SeasonRoutes {
	return &SeasonRoutes{repo: repo, ranking: rankingSvc}
}

func (sr *SeasonRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/seasons", sr.handleListSeasons)
	mux.HandleFunc("GET /v1/seasons/active", sr.handleActiveSeason)
	mux.HandleFunc("GET /v1/seasons/{year}", sr.handleGetSeason)
	mux.HandleFunc("POST /v1/seasons/{year}/reset", sr.handleResetSeason)
}

// handleListSeasons godoc
// @Summary List seasons
// @Description List every season on record
// @Tags seasons
// @Accept json
// @Produce json
// @Success 200 {array} core.Season
// @Failure 500 {object} ErrorResponse
// @Router /seasons [get]
func (sr *SeasonRoutes) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seasons, err := sr.repo.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

// handleActiveSeason godoc
// @Summary Get the active season
// @Description Get the single season currently marked active
// @Tags seasons
// @Accept json
// @Produce json
// @Success 200 {object} core.Season
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /seasons/active [get]
func (sr *SeasonRoutes) handleActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	season, err := sr.repo.GetActive(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

// handleGetSeason godoc
// @Summary Get a season by year
// @Tags seasons
// @Accept json
// @Produce json
// @Param year path integer true "Season year"
// @Success 200 {object} core.Season
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /seasons/{year} [get]
func (sr *SeasonRoutes) handleGetSeason(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := core.SeasonYear(getIntPathValue(r, "year"))
	season, err := sr.repo.GetByYear(ctx, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

type resetSeasonResponse struct {
	Season core.SeasonYear `json:"season"`
	Reset  bool            `json:"reset"`
}

// handleResetSeason godoc
// @Summary Reset a season's ratings to preseason
// @Description Recompute every team's initial_rating from its current preseason inputs, reset current_rating to match, then replay every processed game in the season chronologically
// @Tags seasons
// @Accept json
// @Produce json
// @Param year path integer true "Season year"
// @Success 200 {object} resetSeasonResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /seasons/{year}/reset [post]
func (sr *SeasonRoutes) handleResetSeason(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := core.SeasonYear(getIntPathValue(r, "year"))

	if _, err := sr.repo.GetByYear(ctx, year); err != nil {
		writeError(w, err)
		return
	}

	if err := sr.ranking.ResetPreseason(ctx, year); err != nil {
		writeError(w, err)
		return
	}
	if err := sr.ranking.RecomputeSeason(ctx, year); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resetSeasonResponse{Season: year, Reset: true})
}

package api

import (
	"net/http"
	"strconv"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/prediction"
)

type PredictionRoutes struct {
	repo   core.PredictionRepository
	engine *prediction.Engine
	games  core.GameRepository
}

func NewPredictionRoutes(repo core.PredictionRepository, engine *prediction.Engine, games core.GameRepository) *PredictionRoutes {
	return &PredictionRoutes{repo: repo, engine: engine, games: games}
}

func (pr *PredictionRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/predictions", pr.handleListPredictions)
	mux.HandleFunc("GET /v1/predictions/stored", pr.handleStoredPredictions)
	mux.HandleFunc("GET /v1/predictions/comparison", pr.handleComparison)
	mux.HandleFunc("GET /v1/predictions/accuracy", pr.handleAccuracy)
	mux.HandleFunc("GET /v1/predictions/accuracy/team/{id}", pr.handleTeamAccuracy)
	mux.HandleFunc("GET /v1/predictions/{game_id}", pr.handleGetPrediction)
}

// handleGetPrediction godoc
// @Summary Get a game's prediction
// @Description Get the stored pre-game forecast for a single game
// @Tags predictions
// @Accept json
// @Produce json
// @Param game_id path integer true "Game ID"
// @Success 200 {object} core.Prediction
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions/{game_id} [get]
func (pr *PredictionRoutes) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("game_id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid game id")
		return
	}

	p, err := pr.repo.GetByGameID(ctx, core.GameID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleListPredictions godoc
// @Summary List predictions
// @Description List predictions on scheduled games by season, week, and team, sorted by the higher of the two teams' ratings descending
// @Tags predictions
// @Accept json
// @Produce json
// @Param season query integer false "Filter by season year"
// @Param week query integer false "Filter by week"
// @Param team_id query integer false "Filter by team ID"
// @Param next_week query boolean false "Return only the next unprocessed week's predictions"
// @Param page query integer false "Page number" default(1)
// @Param per_page query integer false "Results per page" default(50)
// @Success 200 {object} PaginatedResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions [get]
func (pr *PredictionRoutes) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := pr.parseFilter(r)

	preds, err := pr.repo.List(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPaginatedResponse(preds, filter.Pagination.Page, filter.Pagination.PerPage, len(preds)))
}

// handleStoredPredictions godoc
// @Summary List raw stored predictions
// @Description List predictions with no sort/filter beyond the basic query parameters, including resolved ones
// @Tags predictions
// @Accept json
// @Produce json
// @Param season query integer false "Filter by season year"
// @Param week query integer false "Filter by week"
// @Param team_id query integer false "Filter by team ID"
// @Success 200 {object} PaginatedResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions/stored [get]
func (pr *PredictionRoutes) handleStoredPredictions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := pr.parseFilter(r)

	preds, err := pr.repo.List(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPaginatedResponse(preds, filter.Pagination.Page, filter.Pagination.PerPage, len(preds)))
}

func (pr *PredictionRoutes) parseFilter(r *http.Request) core.PredictionFilter {
	filter := core.PredictionFilter{
		NextWeek: r.URL.Query().Get("next_week") == "true",
		Pagination: core.Pagination{
			Page:    getIntQuery(r, "page", 1),
			PerPage: getIntQuery(r, "per_page", 50),
		},
	}

	if season := r.URL.Query().Get("season"); season != "" {
		y := core.SeasonYear(getIntQuery(r, "season", 0))
		filter.Season = &y
	}

	if week := r.URL.Query().Get("week"); week != "" {
		wk := getIntQuery(r, "week", 0)
		filter.Week = &wk
	}

	if teamID := r.URL.Query().Get("team_id"); teamID != "" {
		id, err := strconv.ParseInt(teamID, 10, 64)
		if err == nil {
			t := core.TeamID(id)
			filter.TeamID = &t
		}
	}

	return filter
}

type accuracyResponse struct {
	Total      int     `json:"total"`
	Resolved   int     `json:"resolved"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// handleAccuracy godoc
// @Summary Get prediction accuracy
// @Description Aggregate resolved prediction accuracy over a season and/or week
// @Tags predictions
// @Accept json
// @Produce json
// @Param season query integer false "Filter by season year"
// @Param week query integer false "Filter by week"
// @Success 200 {object} accuracyResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions/accuracy [get]
func (pr *PredictionRoutes) handleAccuracy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := core.PredictionFilter{}
	if season := r.URL.Query().Get("season"); season != "" {
		y := core.SeasonYear(getIntQuery(r, "season", 0))
		filter.Season = &y
	}
	if week := r.URL.Query().Get("week"); week != "" {
		wk := getIntQuery(r, "week", 0)
		filter.Week = &wk
	}

	total, resolved, correct, percentage, err := pr.engine.Accuracy(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accuracyResponse{Total: total, Resolved: resolved, Correct: correct, Percentage: percentage})
}

// handleTeamAccuracy godoc
// @Summary Get a team's prediction accuracy
// @Description Aggregate resolved prediction accuracy scoped to games involving one team
// @Tags predictions
// @Accept json
// @Produce json
// @Param id path integer true "Team ID"
// @Param season query integer false "Filter by season year"
// @Success 200 {object} accuracyResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions/accuracy/team/{id} [get]
func (pr *PredictionRoutes) handleTeamAccuracy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid team id")
		return
	}
	teamID := core.TeamID(id)

	filter := core.PredictionFilter{TeamID: &teamID}
	if season := r.URL.Query().Get("season"); season != "" {
		y := core.SeasonYear(getIntQuery(r, "season", 0))
		filter.Season = &y
	}

	total, resolved, correct, percentage, err := pr.engine.Accuracy(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accuracyResponse{Total: total, Resolved: resolved, Correct: correct, Percentage: percentage})
}

// handleComparison godoc
// @Summary Compare Elo predictions to the AP poll baseline
// @Description Per-week accuracy of the Elo predictor vs. the "higher-ranked team wins" AP baseline, plus a disagreement list
// @Tags predictions
// @Accept json
// @Produce json
// @Param season query integer true "Season year"
// @Success 200 {object} prediction.Comparison
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /predictions/comparison [get]
func (pr *PredictionRoutes) handleComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	seasonStr := r.URL.Query().Get("season")
	if seasonStr == "" {
		writeBadRequest(w, "season is required")
		return
	}
	season := core.SeasonYear(getIntQuery(r, "season", 0))

	cmp, err := pr.engine.CompareToAP(ctx, pr.games, season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/ingest"
	"cfbranker.dev/cfb/internal/ranking"
)

type GameRoutes struct {
	repo      core.GameRepository
	ranking   *ranking.Service
	teams     core.TeamRepository
	cache     *cache.CachedRepository
	teamCache *cache.CachedRepository
}

func NewGameRoutes(repo core.GameRepository, rankingSvc *ranking.Service, teams core.TeamRepository, cacheClient *cache.Client) *GameRoutes {
	return &GameRoutes{
		repo:      repo,
		ranking:   rankingSvc,
		teams:     teams,
		cache:     cache.NewCachedRepository(cacheClient, "game"),
		teamCache: cache.NewCachedRepository(cacheClient, "team"),
	}
}

func (gr *GameRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/games", gr.handleListGames)
	mux.HandleFunc("GET /v1/games/{id}", gr.handleGetGame)
	mux.HandleFunc("POST /v1/games", gr.handleCreateGame)
}

// handleGetGame godoc
// @Summary Get game by ID
// @Description Get a single game record, scheduled or played
// @Tags games
// @Accept json
// @Produce json
// @Param id path integer true "Game ID"
// @Success 200 {object} core.Game
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games/{id} [get]
func (gr *GameRoutes) handleGetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid game id")
		return
	}

	idKey := strconv.FormatInt(int64(id), 10)
	game, err := gr.cache.Entity.GetOrCompute(ctx, idKey, func() (any, error) {
		return gr.repo.GetByID(ctx, core.GameID(id))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// handleListGames godoc
// @Summary List games
// @Description Search games by season, week, team, and processed state
// @Tags games
// @Accept json
// @Produce json
// @Param season query integer false "Filter by season year"
// @Param week query integer false "Filter by week"
// @Param team_id query integer false "Filter by team ID (either side)"
// @Param processed query boolean false "Filter by processed state"
// @Param page query integer false "Page number" default(1)
// @Param per_page query integer false "Results per page" default(50)
// @Success 200 {object} PaginatedResponse
// @Failure 500 {object} ErrorResponse
// @Router /games [get]
func (gr *GameRoutes) handleListGames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := core.GameFilter{
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
		w := getIntQuery(r, "week", 0)
		filter.Week = &w
	}

	if teamID := r.URL.Query().Get("team_id"); teamID != "" {
		id, err := strconv.ParseInt(teamID, 10, 64)
		if err == nil {
			t := core.TeamID(id)
			filter.TeamID = &t
		}
	}

	if processed := r.URL.Query().Get("processed"); processed != "" {
		p := processed == "true"
		filter.Processed = &p
	}

	games, err := gr.repo.List(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := gr.repo.Count(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewPaginatedResponse(games, filter.Pagination.Page, filter.Pagination.PerPage, total))
}

// createGameRequest is the body accepted by POST /v1/games: a completed
// game to be upserted and immediately processed.
type createGameRequest struct {
	Season         core.SeasonYear `json:"season"`
	Week           int             `json:"week"`
	HomeID         core.TeamID     `json:"home_id"`
	AwayID         core.TeamID     `json:"away_id"`
	HomeScore      int             `json:"home_score"`
	AwayScore      int             `json:"away_score"`
	IsNeutralSite  bool            `json:"is_neutral_site"`
	GameType       core.GameType   `json:"game_type"`
	PostseasonName string          `json:"postseason_name,omitempty"`
}

// createGameResponse reports the result of atomically processing a
// newly-entered completed game: the stored game plus the rating deltas
// and resulting ratings, per §6.
type createGameResponse struct {
	Game            core.Game `json:"game"`
	HomeRatingDelta float64   `json:"home_rating_change"`
	AwayRatingDelta float64   `json:"away_rating_change"`
	HomeNewRating   float64   `json:"home_new_rating"`
	AwayNewRating   float64   `json:"away_new_rating"`
}

// handleCreateGame godoc
// @Summary Record a completed game
// @Description Accepts a completed game, upserts it, and atomically processes it through the Elo engine
// @Tags games
// @Accept json
// @Produce json
// @Param game body createGameRequest true "Completed game"
// @Success 200 {object} createGameResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games [post]
func (gr *GameRoutes) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if req.Week < 0 || req.Week > 19 {
		writeBadRequest(w, "week must be between 0 and 19")
		return
	}
	if req.HomeScore < 0 || req.AwayScore < 0 {
		writeBadRequest(w, "scores must be non-negative")
		return
	}
	if req.HomeID == req.AwayID {
		writeBadRequest(w, "home_id and away_id must differ")
		return
	}

	home, err := gr.teams.GetByID(ctx, req.HomeID)
	if err != nil {
		writeError(w, err)
		return
	}
	away, err := gr.teams.GetByID(ctx, req.AwayID)
	if err != nil {
		writeError(w, err)
		return
	}

	gameType := req.GameType
	if gameType == "" {
		gameType = core.GameRegular
	}
	excluded := home.IsFCS() || away.IsFCS() || ingest.IsPostseasonExcludedByDefault(gameType)

	g := &core.Game{
		Season:               req.Season,
		Week:                 req.Week,
		HomeID:               req.HomeID,
		AwayID:               req.AwayID,
		HomeScore:            req.HomeScore,
		AwayScore:            req.AwayScore,
		IsNeutralSite:        req.IsNeutralSite,
		ExcludedFromRankings: excluded,
		GameType:             gameType,
		PostseasonName:       req.PostseasonName,
	}

	id, divergence, err := gr.repo.UpsertIngested(ctx, g)
	if err != nil {
		writeError(w, err)
		return
	}
	if divergence != nil {
		writeError(w, core.NewDataIntegrityError("create_game: score divergence on re-submission", divergence))
		return
	}

	if err := gr.ranking.ProcessGame(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	processed, err := gr.repo.GetByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	homeAfter, err := gr.teams.GetByID(ctx, req.HomeID)
	if err != nil {
		writeError(w, err)
		return
	}
	awayAfter, err := gr.teams.GetByID(ctx, req.AwayID)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = gr.cache.Entity.Delete(ctx, strconv.FormatInt(int64(id), 10))
	_ = gr.teamCache.Entity.Delete(ctx, strconv.FormatInt(int64(req.HomeID), 10))
	_ = gr.teamCache.Entity.Delete(ctx, strconv.FormatInt(int64(req.AwayID), 10))

	writeJSON(w, http.StatusOK, createGameResponse{
		Game:            *processed,
		HomeRatingDelta: processed.HomeRatingChange,
		AwayRatingDelta: processed.AwayRatingChange,
		HomeNewRating:   homeAfter.CurrentRating,
		AwayNewRating:   awayAfter.CurrentRating,
	})
}

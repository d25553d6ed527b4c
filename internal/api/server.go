// Package api provides HTTP handlers for the college football ranking API.
//
// @title CFB Ranker API
// @description.markdown
// @version 1.0
// @BasePath /v1
//
// @contact.name API Support
// @contact.url https://github.com/stormlightlabs/cfbranker
// @contact.email info@stormlightlabs.org
//
// @license.name MPL-2.0
// @license.url https://opensource.org/license/mpl-2-0
//
// @tag.name teams
// @tag.description Team roster, tier, and rating data
//
// @tag.name games
// @tag.description Game schedule and result data
//
// @tag.name rankings
// @tag.description Current and historical Elo-derived rankings
//
// @tag.name predictions
// @tag.description Pre-game forecasts and accuracy tracking
//
// @tag.name seasons
// @tag.description Season metadata and the active season
//
// @tag.name admin
// @tag.description Update task triggers and provider usage reporting
package api

import (
	_ "expvar"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/config"
	"cfbranker.dev/cfb/internal/db"
	docs "cfbranker.dev/cfb/internal/docs"
	"cfbranker.dev/cfb/internal/echo"
	"cfbranker.dev/cfb/internal/ingest"
	"cfbranker.dev/cfb/internal/prediction"
	"cfbranker.dev/cfb/internal/provider"
	"cfbranker.dev/cfb/internal/ranking"
	"cfbranker.dev/cfb/internal/repository"
	"cfbranker.dev/cfb/internal/scheduler"
)

type Server struct {
	mux *http.ServeMux

	// Worker is exposed so callers (the server command) can start the
	// weekly cron and stop it on shutdown; the HTTP surface only ever
	// triggers it manually through the admin routes.
	Worker *scheduler.Worker
}

// NewServer wires the full dependency graph: repositories over database,
// the ranking and prediction domain services, the provider client and its
// quota gate, the ingestion pipeline, and the update-task scheduler, then
// registers every route group onto one mux.
func NewServer(database *db.DB, redisClient *redis.Client, providerCfg config.ProviderConfig, quotaCfg config.QuotaConfig, cacheCfg config.CacheConfig, seasonCfg config.SeasonConfig, logger *log.Logger) *Server {
	echo.Info("Initializing repositories...")

	cacheClient := cache.NewClient(redisClient, cache.Config{
		App:     "cfbranker",
		Env:     "prod",
		Version: cacheCfg.Version,
		Enabled: cacheCfg.Enabled,
		TTLs: cache.TTLConfig{
			Entity:   time.Duration(cacheCfg.TTLs.Entity) * time.Second,
			List:     time.Duration(cacheCfg.TTLs.List) * time.Second,
			Search:   time.Duration(cacheCfg.TTLs.Search) * time.Second,
			Upstream: time.Duration(cacheCfg.TTLs.Upstream) * time.Second,
		},
	})

	teams := repository.NewTeamRepository(database)
	games := repository.NewGameRepository(database)
	seasons := repository.NewSeasonRepository(database)
	snapshots := repository.NewRankingSnapshotRepository(database)
	predictions := repository.NewPredictionRepository(database)
	appoll := repository.NewAPPollRepository(database)
	tasks := repository.NewUpdateTaskRepository(database)
	usage := repository.NewAPIUsageRepository(database)

	rankingSvc := ranking.NewService(database, teams, games, snapshots, logger)
	predictionEngine := prediction.NewEngine(predictions, teams, appoll, logger)

	quota := provider.NewQuota(redisClient, usage, quotaCfg.MonthlyCap, quotaCfg.ThresholdPercent, logger)
	client := provider.NewClient(provider.Config{
		BaseURL:      providerCfg.BaseURL,
		ClientID:     providerCfg.ClientID,
		ClientSecret: providerCfg.ClientSecret,
		TokenURL:     providerCfg.TokenURL,
		Timeout:      time.Duration(providerCfg.TimeoutSec) * time.Second,
		MaxRetries:   providerCfg.MaxRetries,
	}, quota, cacheClient, logger)

	pipeline := ingest.NewPipeline(client, teams, games, seasons, appoll, rankingSvc, predictionEngine, logger)

	window := scheduler.SeasonWindow{
		StartMonth: seasonCfg.WindowStartMonth,
		StartDay:   seasonCfg.WindowStartDay,
		EndMonth:   seasonCfg.WindowEndMonth,
		EndDay:     seasonCfg.WindowEndDay,
	}
	worker := scheduler.NewWorker(tasks, seasons, pipeline, client, window, logger)

	echo.Info("Registering routes...")

	configStore := NewConfigStore(quotaCfg, seasonCfg)

	srv := newServer(
		NewTeamRoutes(teams, rankingSvc, games, cacheClient),
		NewGameRoutes(games, rankingSvc, teams, cacheClient),
		NewRankingRoutes(rankingSvc, seasons, snapshots, cacheClient),
		NewPredictionRoutes(predictions, predictionEngine, games),
		NewSeasonRoutes(seasons, rankingSvc),
		NewAdminRoutes(worker, tasks, quota, configStore),
		NewStatsRoutes(teams, games, seasons),
	)
	srv.Worker = worker
	return srv
}

// newServer wires registrars into one mux.
func newServer(registrars ...Registrar) *Server {
	docs.SwaggerInfo.BasePath = "/v1"

	mux := http.NewServeMux()

	for _, r := range registrars {
		r.RegisterRoutes(mux)
	}

	// Health check endpoint
	// @Summary Health check
	// @Description Check if the API server is running
	// @Tags health
	// @Accept json
	// @Produce json
	// @Success 200 {object} HealthResponse
	// @Router /health [get]
	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	})

	mux.HandleFunc("/docs/", httpSwagger.WrapHandler)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})

	mux.Handle("GET /debug/vars", http.DefaultServeMux)
	return &Server{mux: mux}
}

// Implement http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

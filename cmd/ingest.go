package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"cfbranker.dev/cfb/internal/cache"
	"cfbranker.dev/cfb/internal/config"
	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
	"cfbranker.dev/cfb/internal/echo"
	"cfbranker.dev/cfb/internal/ingest"
	"cfbranker.dev/cfb/internal/prediction"
	"cfbranker.dev/cfb/internal/provider"
	"cfbranker.dev/cfb/internal/ranking"
	"cfbranker.dev/cfb/internal/repository"
)

// IngestCmd creates the ingest command group. Unlike ServerFetchCmd, these
// subcommands connect directly to the database and provider rather than
// going through a running API server, mirroring how cmd/db.go talks to
// Postgres directly for operator-run maintenance tasks.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingestion operations",
		Long:  "Pull teams, games, and polls from the provider and replay newly-processed games.",
	}

	cmd.AddCommand(IngestRunCmd())
	cmd.AddCommand(IngestReplayCmd())
	return cmd
}

// IngestRunCmd creates the run command
func IngestRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one refresh_teams/refresh_games/refresh_polls/replay_new pass",
		Long:  "Apply the active season's convenience-wrapper pass: refresh teams, games, and polls from the provider, then replay newly processed games through ranking and prediction.",
		RunE:  runIngestOnce,
	}
}

// IngestReplayCmd creates the replay command
func IngestReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay unprocessed games for a season",
		Long:  "Process already-ingested, not-yet-processed games through ranking and prediction, in chronological order, without re-fetching from the provider.",
		RunE:  runIngestReplay,
	}
	cmd.Flags().Int("season", 0, "Season year to replay (required)")
	cmd.MarkFlagRequired("season")
	return cmd
}

func buildPipeline(cmd *cobra.Command) (*ingest.Pipeline, *db.DB, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error: failed to load config: %w", err)
	}

	database, err := db.Connect(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("error: %w", err)
	}

	logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "🏈",
	})

	teams := repository.NewTeamRepository(database)
	games := repository.NewGameRepository(database)
	seasons := repository.NewSeasonRepository(database)
	snapshots := repository.NewRankingSnapshotRepository(database)
	predictions := repository.NewPredictionRepository(database)
	appoll := repository.NewAPPollRepository(database)
	usage := repository.NewAPIUsageRepository(database)

	rankingSvc := ranking.NewService(database, teams, games, snapshots, logger)
	predictionEngine := prediction.NewEngine(predictions, teams, appoll, logger)

	quota := provider.NewQuota(nil, usage, cfg.Quota.MonthlyCap, cfg.Quota.ThresholdPercent, logger)
	// No Redis connection in this command path; a disabled cache.Client
	// still gives provider.Client a non-nil cache to call into, degrading
	// every lookup to a miss instead of skipping the cache layer entirely.
	noCache := cache.NewClient(nil, cache.Config{Enabled: false})
	client := provider.NewClient(provider.Config{
		BaseURL:      cfg.Provider.BaseURL,
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		TokenURL:     cfg.Provider.TokenURL,
		Timeout:      time.Duration(cfg.Provider.TimeoutSec) * time.Second,
		MaxRetries:   cfg.Provider.MaxRetries,
	}, quota, noCache, logger)

	pipeline := ingest.NewPipeline(client, teams, games, seasons, appoll, rankingSvc, predictionEngine, logger)
	return pipeline, database, nil
}

func runIngestOnce(cmd *cobra.Command, args []string) error {
	echo.Header("Ingestion Run")

	pipeline, database, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	echo.Info("Running refresh_teams, refresh_games, refresh_polls, replay_new...")
	result, err := pipeline.RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	echo.Info("")
	echo.Successf("✓ Teams touched: %d", result.TeamsTouched)
	echo.Successf("✓ Games imported: %d", result.GamesImported)
	echo.Successf("✓ Predictions created: %d", result.PredictionsCreated)
	echo.Successf("✓ Predictions evaluated: %d", result.PredictionsEvaluated)
	return nil
}

func runIngestReplay(cmd *cobra.Command, args []string) error {
	echo.Header("Ingestion Replay")

	season, _ := cmd.Flags().GetInt("season")

	pipeline, database, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	echo.Infof("Replaying unprocessed games for season %d...", season)
	result, err := pipeline.ReplayNew(cmd.Context(), core.SeasonYear(season))
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}

	echo.Info("")
	echo.Successf("✓ Predictions created: %d", result.PredictionsCreated)
	echo.Successf("✓ Predictions evaluated: %d", result.PredictionsEvaluated)
	return nil
}

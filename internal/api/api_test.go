package api

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
	"cfbranker.dev/cfb/internal/config"
	"cfbranker.dev/cfb/internal/db"
	"cfbranker.dev/cfb/internal/testutils"
)

var (
	testServer  *Server
	testDB      *db.DB
	testCleanup func()
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	projectRoot, err := testutils.GetProjectRoot()
	if err != nil {
		panic("failed to get project root: " + err.Error())
	}

	originalDir, err := os.Getwd()
	if err != nil {
		panic("failed to get current directory: " + err.Error())
	}

	if err := os.Chdir(projectRoot); err != nil {
		panic("failed to change to project root: " + err.Error())
	}

	container, err := testutils.NewPostgresContainer(ctx)
	if err != nil {
		panic("failed to create postgres container: " + err.Error())
	}

	testCleanup = func() {
		os.Chdir(originalDir)
		if err := container.Terminate(ctx); err != nil {
			panic("failed to terminate container: " + err.Error())
		}
	}

	database, err := db.Connect(container.ConnStr)
	if err != nil {
		testCleanup()
		panic("failed to connect to database: " + err.Error())
	}

	if err := database.Migrate(ctx); err != nil {
		testCleanup()
		panic("failed to run migrations: " + err.Error())
	}

	if err := container.LoadFixtures(ctx); err != nil {
		testCleanup()
		panic("failed to load fixtures: " + err.Error())
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})

	testDB = database
	testServer = NewServer(database, nil, config.ProviderConfig{}, config.QuotaConfig{MonthlyCap: 1000, ThresholdPercent: 90}, config.CacheConfig{Enabled: false}, config.SeasonConfig{WindowStartMonth: 8, WindowEndMonth: 1}, logger)

	code := m.Run()

	testCleanup()

	os.Exit(code)
}

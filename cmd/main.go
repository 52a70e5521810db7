package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/session"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/desertthunder/soundgraph/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	store, err := session.NewFileTokenStore(session.DefaultTokenPath())
	if err != nil {
		logger.Fatalf("failed to open token store: %v", err)
	}

	timeout := services.DefaultTimeout
	if config.API.TimeoutSeconds > 0 {
		timeout = time.Duration(config.API.TimeoutSeconds) * time.Second
	}

	client := services.NewClient(services.ClientOpts{
		BaseURL:    config.API.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Tokens:     store,
		RateLimit:  config.API.RateLimit,
	})

	auth := services.NewAuthService(client)
	music := services.NewMusicService(client)

	coordinator := session.NewCoordinator(auth, store, logger)
	client.SetOnUnauthorized(coordinator.HandleUnauthorized)

	engine := tasks.NewImportEngine(music, tasks.EngineOpts{
		PollInterval: time.Duration(config.Import.PollIntervalSeconds) * time.Second,
		PollBudget:   time.Duration(config.Import.PollBudgetSeconds) * time.Second,
	})

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Client:  client,
		Auth:    auth,
		Music:   music,
		Store:   store,
		Session: coordinator,
		Engine:  engine,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "sgx",
		Usage:    "Explore your Spotify listening graph from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

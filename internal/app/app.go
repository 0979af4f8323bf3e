// Package app wires configuration, clients, and services into a running
// application core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/twindex/internal/clients/histock"
	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/interfaces"
	"github.com/bobmcallan/twindex/internal/services/quote"
)

// App holds the initialized configuration, clients, and services.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	IndexSource  interfaces.IndexSource
	QuoteService interfaces.QuoteService
	StartupTime  time.Time

	updaterCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, the HiStock client, and the
// quote service. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	// Load configuration - check provided path, TWINDEX_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TWINDEX_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "twindex.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/twindex.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	client := histock.NewClient(
		histock.WithBaseURL(config.Clients.HiStock.BaseURL),
		histock.WithLogger(logger),
		histock.WithRateLimit(config.Clients.HiStock.RateLimit),
		histock.WithTimeout(config.Clients.HiStock.GetTimeout()),
	)

	quoteService := quote.NewService(client, logger)

	return &App{
		Config:       config,
		Logger:       logger,
		IndexSource:  client,
		QuoteService: quoteService,
		StartupTime:  time.Now(),
	}, nil
}

// WarmCache performs the blocking first fetch so the process never serves
// without a snapshot. A failed first fetch publishes the default snapshot,
// the one case where an error is immediately visible to callers.
func (a *App) WarmCache(ctx context.Context) {
	start := time.Now()

	snap := a.QuoteService.Refresh(ctx)

	event := a.Logger.Info()
	if snap.Error != "" {
		event = a.Logger.Warn().Str("error", snap.Error)
	}
	event.
		Str("source", snap.Source).
		Float64("price", snap.Price).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: initial snapshot ready")
}

// StartUpdater launches the background refresh loop.
func (a *App) StartUpdater() {
	ctx, cancel := context.WithCancel(context.Background())
	a.updaterCancel = cancel
	go runUpdater(ctx, a.QuoteService, a.Logger)
}

// Close stops background tasks.
func (a *App) Close() {
	if a.updaterCancel != nil {
		a.updaterCancel()
	}
}

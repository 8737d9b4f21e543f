package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mbarros/simvest/internal/clients/bcb"
	"github.com/mbarros/simvest/internal/clients/yahoo"
	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/services/simulation"
	"github.com/mbarros/simvest/internal/storage"
)

// App holds the initialized configuration, clients, storage and the
// simulation service. It is the shared core behind cmd/simvest-server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	MarketClient    interfaces.MarketDataClient
	InflationClient interfaces.InflationClient
	Simulations     interfaces.SimulationService
	StartupTime     time.Time
}

func binaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp wires configuration, logging, storage, the market and inflation
// clients, and the simulation service. configPath may be empty, in which
// case SIMVEST_CONFIG and then the binary directory are consulted.
func NewApp(configPath string) (*App, error) {
	startup := time.Now()
	binDir := binaryDir()

	if configPath == "" {
		configPath = os.Getenv("SIMVEST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "simvest.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/simvest.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths against the binary directory so the
	// server is self-contained wherever it is installed.
	for _, path := range []*string{&config.Storage.Simulations.Path, &config.Storage.Files.Path} {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(binDir, *path)
		}
	}

	logger := common.NewLogger(config.Logging.Level)

	store, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	market := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)
	inflation := bcb.NewClient(
		bcb.WithBaseURL(config.Clients.BCB.BaseURL),
		bcb.WithLogger(logger),
		bcb.WithSeries(config.Clients.BCB.Series),
		bcb.WithRetry(config.Clients.BCB.MaxRetries, config.Clients.BCB.GetRetryDelay()),
		bcb.WithTimeout(config.Clients.BCB.GetTimeout()),
	)

	sims := simulation.NewService(store, market, inflation, config.BaseCurrency, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("base_currency", config.BaseCurrency).
		Dur("startup", time.Since(startup)).
		Msg("Application initialized")

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         store,
		MarketClient:    market,
		InflationClient: inflation,
		Simulations:     sims,
		StartupTime:     startup,
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}

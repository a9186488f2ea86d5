package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/cache"
	"github.com/voltcast/forecast-api/internal/config"
	"github.com/voltcast/forecast-api/internal/handlers"
	"github.com/voltcast/forecast-api/internal/middleware"
	"github.com/voltcast/forecast-api/internal/providers"
	"github.com/voltcast/forecast-api/internal/simulation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting forecast API", "config", cfg.String())

	providerCache := cache.New(cfg.Redis, logger)
	defer providerCache.Close()

	// Data providers, each wrapped with the response cache where the
	// lookup is cacheable.
	censusClient := providers.NewCensusClient(cfg.Providers.CensusAPIKey, cfg.Providers.LocationTimeout, logger)
	eiaClient := providers.NewEIAClient(cfg.Providers.EIAAPIKey, cfg.Providers.EnergyTimeout, logger)
	weatherClient := providers.NewOpenWeatherClient(cfg.Providers.OpenWeatherAPIKey, cfg.Providers.ClimateTimeout, logger)
	geocodeClient := providers.NewGeocodeClient(cfg.Providers.MapsAPIKey, cfg.Providers.LocationTimeout, logger)
	narrativeClient := providers.NewAnthropicClient(cfg.Providers.AnthropicAPIKey, cfg.Providers.NarrativeTimeout, logger)

	registry := simulation.NewGridRegistry()

	deps := &handlers.Dependencies{
		Location:  &providers.CachedLocation{Inner: censusClient, Cache: providerCache},
		Energy:    &providers.CachedEnergy{Inner: eiaClient, Cache: providerCache},
		Climate:   &providers.CachedClimate{Inner: weatherClient, Cache: providerCache},
		Address:   geocodeClient,
		Narrative: narrativeClient,
		Registry:  registry,
		Impact:    simulation.NewGridImpactCalculator(registry, logger),
		Logger:    logger,
		Config: &handlers.Config{
			Version:     "1.0.0",
			ServiceName: "forecast-api",
			ReportPath:  cfg.App.ReportPath,
		},
	}

	logger.Info("forecast services initialized",
		"narrative_configured", cfg.Providers.AnthropicAPIKey != "",
		"census_configured", cfg.Providers.CensusAPIKey != "",
		"cache_enabled", providerCache.Enabled(),
		"environment", cfg.Server.Env)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(handlers.CORSMiddleware())
	r.Use(middleware.NewRateLimiter(cfg.App.RateLimit).Middleware())

	handlers.RegisterHandlers(r, deps)

	addr := cfg.GetServerAddress()
	logger.Info("starting forecast API server", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tariffsvc/internal/adapters"
	"tariffsvc/internal/adapters/httpclient"
	"tariffsvc/internal/adapters/postgres"
	"tariffsvc/internal/adapters/rediscache"
	"tariffsvc/internal/api"
	"tariffsvc/internal/config"
	"tariffsvc/internal/platform/db"
	httpserver "tariffsvc/internal/platform/http"
	"tariffsvc/internal/tariff"
	"tariffsvc/internal/tariff/handler"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, cache ping)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Cache: Redis when reachable, no-op otherwise. The no-op variant
	// satisfies the same contract with always-miss behavior.
	var cache adapters.CacheProvider
	redisCache, err := rediscache.New(startupCtx, appCfg.Redis.Addr, appCfg.Redis.Password, appCfg.Redis.Db)
	if err != nil {
		logrus.WithError(err).Warn("Redis unreachable, serving without cache")
		cache = rediscache.NewNoop()
	} else {
		defer func() { _ = redisCache.Close() }()
		cache = redisCache
		logrus.Info("✅ Redis connection successful")
	}

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External clients
	if appCfg.RatesAPI.BaseURL == "" {
		return fmt.Errorf("rates api base url is required")
	}
	ratesClient := httpclient.NewFrankfurterClient(baseHTTPClient, appCfg.RatesAPI.BaseURL)

	// Repositories
	tariffRepo := postgres.NewTariffRepository(pool)
	syncLock := postgres.NewSyncLock(pool)

	// Services
	cacheTTL := time.Duration(appCfg.Cache.TTLSeconds) * time.Second
	tariffService := tariff.NewService(tariffRepo, cache, cacheTTL)
	scheduler := tariff.NewScheduler(tariffRepo, syncLock, ratesClient, cache, tariff.SyncConfig{
		Hour:         appCfg.Sync.Hour,
		Minute:       appCfg.Sync.Minute,
		RunOnStartup: appCfg.Sync.RunOnStartup,
		FetchDelay:   time.Duration(appCfg.Sync.FetchDelayMs) * time.Millisecond,
	})
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	tariffHandler := handler.NewTariffHandler(tariffService)
	router := api.NewRouter(tariffHandler)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"fx-rate-proxy/internal/adapter/cache"
	httpRouter "fx-rate-proxy/internal/adapter/http"
	"fx-rate-proxy/internal/adapter/provider"
	"fx-rate-proxy/internal/config"
	"fx-rate-proxy/internal/metrics"
	"fx-rate-proxy/internal/service"
	"fx-rate-proxy/pkg/logger"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.NewLoggerWithConfig(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer func() { _ = log.Sync() }()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn("Failed to load .env file", "error", envErr)
	}

	log.Info("Starting fx rate proxy",
		"ttl", cfg.Cache.TTL,
		"primary", cfg.Primary.BaseURL,
		"fallback", cfg.Fallback.BaseURL,
		"default_target", cfg.Resolver.DefaultTarget,
	)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	rateCache := cache.NewMemoryCache(cfg.Cache.TTL, log.With("component", "cache"))
	appMetrics.RegisterCacheSize(rateCache.Size)

	primary := provider.NewFrankfurter(providerOptions(cfg.Primary), log)
	fallback := provider.NewExchangeRateHost(providerOptions(cfg.Fallback), log)

	resolver := service.NewRateResolver(
		rateCache,
		primary,
		fallback,
		service.ResolverConfig{
			DefaultTarget: cfg.Resolver.DefaultTarget,
			Coalesce:      cfg.Resolver.Coalesce,
		},
		appMetrics,
		log.With("component", "resolver"),
	)
	handler := httpRouter.NewHandler(resolver, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	if cfg.Cache.SweepInterval > 0 {
		go sweepExpired(ctx, rateCache, cfg.Cache.SweepInterval, log)
	}

	go func() {
		log.Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

func providerOptions(cfg config.ProviderConfig) provider.Options {
	return provider.Options{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
	}
}

// sweepExpired periodically drops expired cache entries so unread pairs do
// not linger until their next lookup.
func sweepExpired(ctx context.Context, rateCache *cache.MemoryCache, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rateCache.PurgeExpired()
		case <-ctx.Done():
			log.Info("Stopping cache sweep goroutine")
			return
		}
	}
}

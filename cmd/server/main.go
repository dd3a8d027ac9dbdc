package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tangled.org/pulse.social/pulse/internal/ads"
	"tangled.org/pulse.social/pulse/internal/classifier"
	"tangled.org/pulse.social/pulse/internal/communities"
	"tangled.org/pulse.social/pulse/internal/config"
	"tangled.org/pulse.social/pulse/internal/filters"
	"tangled.org/pulse.social/pulse/internal/handlers"
	"tangled.org/pulse.social/pulse/internal/kv"
	"tangled.org/pulse.social/pulse/internal/metrics"
	"tangled.org/pulse.social/pulse/internal/middleware"
	"tangled.org/pulse.social/pulse/internal/routing"
	"tangled.org/pulse.social/pulse/internal/tracing"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load(os.Getenv("PULSE_CONFIG"))
	if err != nil {
		configureLogging("info", "console", os.Stdout)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	configureLogging(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	log.Info().Msg("Starting Pulse")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing {
		tp, err := tracing.Init(ctx, tracing.Options{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Failed to flush traces")
			}
		}()
		log.Info().Msg("OpenTelemetry tracing enabled")
	}

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Kind).Msg("Failed to open store")
	}
	defer closer.Close()

	log.Info().
		Str("store", cfg.Store.Kind).
		Str("path", cfg.Store.Path).
		Msg("Key-value store opened")

	persister := kv.NewPersister(store)

	adService := ads.NewService(ads.DefaultCatalog(), ads.Config{
		NativeFrequency:       cfg.Ads.NativeFrequency,
		BannerFrequency:       cfg.Ads.BannerFrequency,
		InterstitialThreshold: ads.DefaultConfig().InterstitialThreshold,
	})

	gate := filters.NewGate(ctx, persister, newClassifier(cfg.Filter))
	ledger := communities.NewLedger(ctx, persister, communities.SeedCommunities())

	log.Info().
		Int("communities", ledger.Count()).
		Int("joined", ledger.JoinedCount()).
		Msg("Community ledger loaded")

	metrics.StartCollector(ctx, metrics.StatsSource{
		CommunityCount: ledger.Count,
		JoinedCount:    ledger.JoinedCount,
		SessionImpressions: func() map[string]int64 {
			stats := adService.GetSessionStats()
			out := make(map[string]int64, len(stats.Impressions))
			for adType, n := range stats.Impressions {
				out[string(adType)] = n
			}
			return out
		},
		StoredKeyCount: storedKeyCount(store),
	}, cfg.MetricsInterval)

	rateLimits := middleware.NewDefaultRateLimitConfig()
	rateLimits.TrustProxyHeaders = cfg.TrustProxy

	handler := routing.SetupRouter(routing.Config{
		Handlers:   handlers.NewHandler(adService, gate, ledger),
		Logger:     log.Logger,
		RateLimits: rateLimits,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", srv.Addr).
			Str("url", "http://localhost:"+cfg.Port).
			Msg("Starting HTTP server")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
		cancel()
	}

	// Handlers still running after a timed-out Shutdown have their writes
	// dropped; the store closes only after in-flight writes finish.
	persister.Close()
	log.Info().Msg("Server stopped")
}

// newClassifier prefers the remote classifier when one is configured and
// falls back to the keyword heuristic.
func newClassifier(cfg config.FilterConfig) classifier.Classifier {
	if cfg.ClassifierURL == "" {
		log.Info().Msg("Using keyword brainrot classifier")
		return classifier.NewKeywordClassifier()
	}

	client := &http.Client{
		Timeout:   cfg.ClassifierTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	log.Info().
		Str("url", cfg.ClassifierURL).
		Dur("timeout", cfg.ClassifierTimeout).
		Msg("Using remote brainrot classifier")
	return classifier.NewHTTPClassifier(cfg.ClassifierURL, client)
}

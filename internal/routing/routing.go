package routing

import (
	"net/http"

	"tangled.org/pulse.social/pulse/internal/handlers"
	"tangled.org/pulse.social/pulse/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger

	// RateLimits overrides the default per-class limits
	RateLimits *middleware.RateLimitConfig
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Rejects cross-origin browser requests on state-changing routes
	cop := http.NewCrossOriginProtection()
	mutate := func(fn http.HandlerFunc) http.Handler {
		return cop.Handler(fn)
	}

	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Ads
	mux.HandleFunc("GET /api/ads/native", h.HandleNativeAd)
	mux.HandleFunc("GET /api/ads/interstitial", h.HandleInterstitial)
	mux.HandleFunc("GET /api/ads/banner", h.HandleBanner)
	mux.HandleFunc("GET /api/ads/stats", h.HandleAdStats)
	mux.HandleFunc("GET /api/ads/{type}", h.HandleGetAd)
	mux.Handle("POST /api/ads/{id}/impression", mutate(h.HandleAdImpression))
	mux.Handle("POST /api/ads/{id}/click", mutate(h.HandleAdClick))
	mux.HandleFunc("GET /api/revenue", h.HandleRevenue)

	// Content filters
	mux.HandleFunc("GET /api/filters", h.HandleGetFilters)
	mux.Handle("PATCH /api/filters", mutate(h.HandleUpdateFilters))
	mux.Handle("POST /api/filters/nsfw/toggle", mutate(h.HandleToggleNSFW))
	mux.Handle("POST /api/filters/brainrot/toggle", mutate(h.HandleToggleBrainrot))
	mux.Handle("POST /api/filters/children-mode/toggle", mutate(h.HandleToggleChildrenMode))
	mux.Handle("PUT /api/filters/content-types", mutate(h.HandleSetContentTypes))
	mux.Handle("POST /api/filters/content-types/{type}/toggle", mutate(h.HandleToggleContentType))
	mux.HandleFunc("POST /api/filters/brainrot/detect", h.HandleDetectBrainrot)
	mux.HandleFunc("POST /api/feed/filter", h.HandleFilterFeed)

	// Communities
	mux.HandleFunc("GET /api/communities", h.HandleListCommunities)
	mux.HandleFunc("GET /api/communities/joined", h.HandleJoinedCommunities)
	mux.HandleFunc("GET /api/communities/{id}", h.HandleGetCommunity)
	mux.Handle("POST /api/communities", mutate(h.HandleCreateCommunity))
	mux.Handle("POST /api/communities/{id}/join", mutate(h.HandleJoinCommunity))
	mux.Handle("DELETE /api/communities/{id}/join", mutate(h.HandleLeaveCommunity))

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Limit request body size (innermost)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Apply rate limiting
	rateLimits := cfg.RateLimits
	if rateLimits == nil {
		rateLimits = middleware.NewDefaultRateLimitConfig()
	}
	handler = middleware.RateLimitMiddleware(rateLimits)(handler)

	// 3. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 4. Apply logging middleware
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	// 5. Trace every request (outermost)
	return otelhttp.NewHandler(handler, "pulse.http")
}

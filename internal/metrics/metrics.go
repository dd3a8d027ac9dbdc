package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Key-value persistence metrics
var (
	StoreWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_store_writes_total",
		Help: "Total number of asynchronous key-value writes by operation and outcome",
	}, []string{"operation", "status"})

	StoreCorruptEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_store_corrupt_entries_total",
		Help: "Total number of stored entries discarded because they could not be decoded",
	}, []string{"key"})
)

// Ad metrics
var (
	AdImpressionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_ad_impressions_total",
		Help: "Total number of ad impressions by ad type",
	}, []string{"type"})

	AdClicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_ad_clicks_total",
		Help: "Total number of ad clicks",
	})
)

// Content filter metrics
var (
	FilterChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_filter_changes_total",
		Help: "Total number of content filter mutations by operation",
	}, []string{"operation"})

	BrainrotChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_brainrot_checks_total",
		Help: "Total number of brainrot checks by resolution (skipped, cache_hit, classified, failed)",
	}, []string{"result"})

	ClassifierRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_classifier_request_duration_seconds",
		Help:    "Brainrot classifier request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

// Community metrics
var (
	CommunityActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_community_actions_total",
		Help: "Total number of community ledger operations",
	}, []string{"operation"})
)

// Gauges updated periodically by the collector
var (
	CommunitiesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_communities_total",
		Help: "Number of communities known to the ledger (seed plus custom)",
	})

	JoinedCommunitiesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_joined_communities_total",
		Help: "Number of communities in the joined set",
	})

	SessionImpressions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pulse_session_impressions",
		Help: "Ad impressions recorded in the current session by ad type",
	}, []string{"type"})

	StoredKeysTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_stored_keys_total",
		Help: "Number of keys held by the key-value store",
	})
)

// NormalizePath maps a request path to its route pattern so IDs do not
// become label values.
func NormalizePath(path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch resource, n := segments[1], len(segments); {
	case resource == "ads" && n == 3:
		switch segments[2] {
		case "native", "interstitial", "banner", "stats":
			return path
		}
		return "/api/ads/:type"
	case resource == "ads" && n == 4 && (segments[3] == "click" || segments[3] == "impression"):
		return "/api/ads/:id/" + segments[3]
	case resource == "communities" && n == 4 && segments[3] == "join":
		return "/api/communities/:id/join"
	case resource == "communities" && n == 3 && segments[2] != "joined":
		return "/api/communities/:id"
	case resource == "filters" && n == 5 && segments[2] == "content-types" && segments[4] == "toggle":
		return "/api/filters/content-types/:type/toggle"
	}
	return path
}

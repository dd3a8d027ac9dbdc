// Package ads holds the in-memory ad catalog and its per-session accounting:
// which creative to show, when a placement is eligible, and how many
// impressions and clicks were recorded.
package ads

import (
	"math/rand/v2"
	"sync"

	"tangled.org/pulse.social/pulse/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Service owns one session's ad catalog and impression counters.
// Counters start at zero for every new Service.
type Service struct {
	mu        sync.Mutex
	config    Config
	creatives []*Creative
	byID      map[string]*Creative
	byType    map[AdType][]*Creative
	session   map[AdType]int64

	// intn picks an index in [0, n); replaced in tests
	intn func(n int) int
}

// NewService creates an ad service over a copy of catalog.
func NewService(catalog []Creative, config Config) *Service {
	s := &Service{
		config:  config,
		byID:    make(map[string]*Creative, len(catalog)),
		byType:  make(map[AdType][]*Creative),
		session: make(map[AdType]int64),
		intn:    rand.IntN,
	}

	for i := range catalog {
		c := catalog[i]
		c.Impressions = 0
		c.Clicks = 0
		s.creatives = append(s.creatives, &c)
		s.byID[c.ID] = &c
		s.byType[c.Type] = append(s.byType[c.Type], &c)
	}

	log.Debug().
		Int("creatives", len(s.creatives)).
		Int("native_frequency", config.NativeFrequency).
		Int("banner_frequency", config.BannerFrequency).
		Msg("ads: service initialized")

	return s
}

// Config returns the placement cadence the service was built with.
func (s *Service) Config() Config {
	return s.config
}

// GetAd picks a creative of the given type uniformly at random and records an
// impression for it. Returns nil if the catalog has no creative of that type.
func (s *Service) GetAd(adType AdType) *Creative {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.byType[adType]
	if len(candidates) == 0 {
		return nil
	}

	c := candidates[s.intn(len(candidates))]
	s.trackImpressionLocked(c.ID, adType)

	snapshot := *c
	return &snapshot
}

// GetNativeAdForFeed returns a native ad for the given 0-based feed position,
// or nil when no ad belongs there. Premium viewers never see ads.
func (s *Service) GetNativeAdForFeed(postIndex int, isPremium bool) *Creative {
	if isPremium || s.config.NativeFrequency <= 0 {
		return nil
	}
	if (postIndex+1)%s.config.NativeFrequency != 0 {
		return nil
	}
	return s.GetAd(AdTypeNative)
}

// ShouldShowInterstitial reports whether an interstitial is due after
// actionsCount user actions. The very first action never triggers one.
func (s *Service) ShouldShowInterstitial(actionsCount int, isPremium bool) bool {
	if isPremium || s.config.InterstitialThreshold <= 0 {
		return false
	}
	return actionsCount > 0 && actionsCount%s.config.InterstitialThreshold == 0
}

// ShouldShowBanner reports whether banners are enabled for this viewer.
func (s *Service) ShouldShowBanner(isPremium bool) bool {
	if isPremium {
		return false
	}
	return s.config.BannerFrequency != 0
}

// TrackImpression records one impression. Every call counts; callers must
// call it exactly once per actual impression.
func (s *Service) TrackImpression(adID string, adType AdType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackImpressionLocked(adID, adType)
}

// Caller must hold s.mu
func (s *Service) trackImpressionLocked(adID string, adType AdType) {
	s.session[adType]++
	if c, ok := s.byID[adID]; ok {
		c.Impressions++
	}
	metrics.AdImpressionsTotal.WithLabelValues(string(adType)).Inc()
}

// TrackClick increments the creative's click counter. It reports false if
// the ad ID is unknown. No session-level click counter is kept.
func (s *Service) TrackClick(adID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[adID]
	if !ok {
		return false
	}
	c.Clicks++
	metrics.AdClicksTotal.Inc()
	return true
}

// GetSessionStats returns a snapshot of the session impression counters.
// Every ad type is present, including those with zero impressions.
func (s *Service) GetSessionStats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := SessionStats{Impressions: make(map[AdType]int64, len(AllAdTypes()))}
	for _, t := range AllAdTypes() {
		stats.Impressions[t] = s.session[t]
		stats.Total += s.session[t]
	}
	// Types outside the known set still count towards the total
	for t, n := range s.session {
		if _, known := stats.Impressions[t]; !known {
			stats.Impressions[t] = n
			stats.Total += n
		}
	}
	return stats
}

// Catalog returns a snapshot of every creative with its current counters.
func (s *Service) Catalog() []Creative {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Creative, 0, len(s.creatives))
	for _, c := range s.creatives {
		out = append(out, *c)
	}
	return out
}

// Creative returns a snapshot of one creative, or nil if the ID is unknown.
func (s *Service) Creative(adID string) *Creative {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[adID]
	if !ok {
		return nil
	}
	snapshot := *c
	return &snapshot
}

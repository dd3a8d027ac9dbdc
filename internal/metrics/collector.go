package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource supplies the values behind the periodically refreshed gauges.
// Any nil field leaves its gauge untouched.
type StatsSource struct {
	CommunityCount     func() int
	JoinedCount        func() int
	SessionImpressions func() map[string]int64
	// StoredKeyCount may return a negative value when the count is unknown.
	StoredKeyCount func() int
}

// StartCollector refreshes the gauges once immediately, then every interval
// in a background goroutine until ctx is done.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	src.refresh()
	go src.loop(ctx, interval)
	log.Info().Dur("interval", interval).Msg("metrics: collector started")
}

func (src StatsSource) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			src.refresh()
		case <-ctx.Done():
			log.Debug().Msg("metrics: collector stopped")
			return
		}
	}
}

func (src StatsSource) refresh() {
	setGauge := func(fn func() int, set func(float64)) {
		if fn == nil {
			return
		}
		if n := fn(); n >= 0 {
			set(float64(n))
		}
	}
	setGauge(src.CommunityCount, CommunitiesTotal.Set)
	setGauge(src.JoinedCount, JoinedCommunitiesTotal.Set)
	setGauge(src.StoredKeyCount, StoredKeysTotal.Set)

	if src.SessionImpressions != nil {
		for adType, n := range src.SessionImpressions() {
			SessionImpressions.WithLabelValues(adType).Set(float64(n))
		}
	}
}

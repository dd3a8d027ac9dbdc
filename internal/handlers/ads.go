package handlers

import (
	"net/http"

	"tangled.org/pulse.social/pulse/internal/ads"

	"github.com/rs/zerolog/log"
)

// AdResponse wraps an optional creative. Ad is null when nothing should show.
type AdResponse struct {
	Ad *ads.Creative `json:"ad"`
}

// DecisionResponse answers a should-show question.
type DecisionResponse struct {
	Show bool `json:"show"`
}

// AdStatsResponse is the session accounting snapshot.
type AdStatsResponse struct {
	Session   ads.SessionStats `json:"session"`
	Creatives []ads.Creative   `json:"creatives"`
}

// RevenueResponse is a creator revenue estimate.
type RevenueResponse struct {
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Revenue     float64  `json:"revenue"`
	Tier        ads.Tier `json:"tier"`
	Share       float64  `json:"share"`
	Payout      float64  `json:"payout"`
}

type impressionRequest struct {
	Type ads.AdType `json:"type"`
}

// HandleGetAd serves GET /api/ads/{type}: a random creative of that type,
// counted as an impression.
func (h *Handler) HandleGetAd(w http.ResponseWriter, r *http.Request) {
	adType, ok := ads.ParseAdType(r.PathValue("type"))
	if !ok {
		http.Error(w, "Unknown ad type", http.StatusBadRequest)
		return
	}
	writeJSON(w, AdResponse{Ad: h.ads.GetAd(adType)}, "ad")
}

// HandleNativeAd serves GET /api/ads/native?index=N&premium=bool.
func (h *Handler) HandleNativeAd(w http.ResponseWriter, r *http.Request) {
	index, err := queryInt(r, "index", -1)
	if err != nil || index < 0 {
		http.Error(w, "index must be a non-negative integer", http.StatusBadRequest)
		return
	}
	premium, err := queryBool(r, "premium")
	if err != nil {
		http.Error(w, "premium must be a boolean", http.StatusBadRequest)
		return
	}
	writeJSON(w, AdResponse{Ad: h.ads.GetNativeAdForFeed(index, premium)}, "native ad")
}

// HandleInterstitial serves GET /api/ads/interstitial?actions=N&premium=bool.
func (h *Handler) HandleInterstitial(w http.ResponseWriter, r *http.Request) {
	actions, err := queryInt(r, "actions", 0)
	if err != nil {
		http.Error(w, "actions must be an integer", http.StatusBadRequest)
		return
	}
	premium, err := queryBool(r, "premium")
	if err != nil {
		http.Error(w, "premium must be a boolean", http.StatusBadRequest)
		return
	}
	writeJSON(w, DecisionResponse{Show: h.ads.ShouldShowInterstitial(actions, premium)}, "interstitial decision")
}

// HandleBanner serves GET /api/ads/banner?premium=bool.
func (h *Handler) HandleBanner(w http.ResponseWriter, r *http.Request) {
	premium, err := queryBool(r, "premium")
	if err != nil {
		http.Error(w, "premium must be a boolean", http.StatusBadRequest)
		return
	}
	writeJSON(w, DecisionResponse{Show: h.ads.ShouldShowBanner(premium)}, "banner decision")
}

// HandleAdImpression serves POST /api/ads/{id}/impression for ads rendered
// without going through GetAd.
func (h *Handler) HandleAdImpression(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}
	var req impressionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	adType, ok := ads.ParseAdType(string(req.Type))
	if !ok {
		http.Error(w, "Unknown ad type", http.StatusBadRequest)
		return
	}

	h.ads.TrackImpression(r.PathValue("id"), adType)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdClick serves POST /api/ads/{id}/click.
func (h *Handler) HandleAdClick(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.ads.TrackClick(id) {
		log.Debug().Str("ad_id", id).Msg("ads: click for unknown creative")
		http.Error(w, "Ad not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdStats serves GET /api/ads/stats.
func (h *Handler) HandleAdStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, AdStatsResponse{
		Session:   h.ads.GetSessionStats(),
		Creatives: h.ads.Catalog(),
	}, "ad stats")
}

// HandleRevenue serves GET /api/revenue?impressions=&clicks=&tier=.
func (h *Handler) HandleRevenue(w http.ResponseWriter, r *http.Request) {
	impressions, err := queryInt64(r, "impressions")
	if err != nil {
		http.Error(w, "impressions must be a non-negative integer", http.StatusBadRequest)
		return
	}
	clicks, err := queryInt64(r, "clicks")
	if err != nil {
		http.Error(w, "clicks must be a non-negative integer", http.StatusBadRequest)
		return
	}

	tier := ads.TierFree
	if raw := r.URL.Query().Get("tier"); raw != "" {
		var ok bool
		if tier, ok = ads.ParseTier(raw); !ok {
			http.Error(w, "Unknown tier", http.StatusBadRequest)
			return
		}
	}

	revenue := ads.CalculateCreatorRevenue(impressions, clicks)
	share := ads.GetRevenueShare(tier)
	writeJSON(w, RevenueResponse{
		Impressions: impressions,
		Clicks:      clicks,
		Revenue:     revenue,
		Tier:        tier,
		Share:       share,
		Payout:      revenue * share,
	}, "revenue")
}

package ads

// AdType is the placement format of a creative
type AdType string

const (
	AdTypeBanner       AdType = "banner"
	AdTypeInterstitial AdType = "interstitial"
	AdTypeNative       AdType = "native"
	AdTypeRewarded     AdType = "rewarded"
)

// AllAdTypes returns every ad type in display order
func AllAdTypes() []AdType {
	return []AdType{
		AdTypeBanner,
		AdTypeInterstitial,
		AdTypeNative,
		AdTypeRewarded,
	}
}

// ParseAdType converts a string to an AdType, reporting whether it is known
func ParseAdType(s string) (AdType, bool) {
	for _, t := range AllAdTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Creative is a single advertisement in the catalog.
// Impressions and Clicks are session counters, never persisted.
type Creative struct {
	ID          string `json:"id"`
	Type        AdType `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	CTAText     string `json:"ctaText"`
	TargetURL   string `json:"targetUrl"`
	Impressions int64  `json:"impressions"`
	Clicks      int64  `json:"clicks"`
}

// SessionStats is a snapshot of the per-type session impression counters
type SessionStats struct {
	Impressions map[AdType]int64 `json:"impressions"`
	Total       int64            `json:"total"`
}

// Tier is a viewer's subscription level
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

// Config holds ad placement cadence settings
type Config struct {
	// NativeFrequency places a native ad at every Nth feed position. 0 disables native ads.
	NativeFrequency int

	// BannerFrequency enables banners when nonzero.
	BannerFrequency int

	// InterstitialThreshold shows an interstitial every N user actions.
	InterstitialThreshold int
}

// DefaultConfig returns the production cadence.
// Banners are off until the frequency is tuned.
func DefaultConfig() Config {
	return Config{
		NativeFrequency:       5,
		BannerFrequency:       0,
		InterstitialThreshold: 15,
	}
}

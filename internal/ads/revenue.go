package ads

// Pricing constants used for creator revenue estimates
const (
	// CPM is the payout per thousand impressions
	CPM = 2.5
	// CPC is the payout per click
	CPC = 0.25
)

var revenueShares = map[Tier]float64{
	TierFree:    0,
	TierBasic:   0,
	TierPremium: 0,
	TierVIP:     0.5,
}

// CalculateCreatorRevenue estimates a creator's earnings for the given counts.
func CalculateCreatorRevenue(impressions, clicks int64) float64 {
	return float64(impressions)/1000*CPM + float64(clicks)*CPC
}

// GetRevenueShare returns the fraction of ad revenue paid out for a tier.
// Unknown tiers earn nothing.
func GetRevenueShare(tier Tier) float64 {
	return revenueShares[tier]
}

// ParseTier converts a string to a Tier, reporting whether it is known
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	_, ok := revenueShares[t]
	return t, ok
}

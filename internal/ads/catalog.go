package ads

// DefaultCatalog returns the static set of creatives served until a real ad
// network is integrated.
func DefaultCatalog() []Creative {
	return []Creative{
		{
			ID:          "banner-pulse-premium",
			Type:        AdTypeBanner,
			Title:       "Go ad-free with Pulse Premium",
			Description: "No ads, exclusive badges and early access to new features.",
			ImageURL:    "https://cdn.pulse.social/ads/premium-banner.png",
			CTAText:     "Upgrade",
			TargetURL:   "https://pulse.social/premium",
		},
		{
			ID:          "banner-creator-fund",
			Type:        AdTypeBanner,
			Title:       "Join the Creator Fund",
			Description: "Earn a share of ad revenue from your posts.",
			ImageURL:    "https://cdn.pulse.social/ads/creator-fund.png",
			CTAText:     "Apply now",
			TargetURL:   "https://pulse.social/creators",
		},
		{
			ID:          "interstitial-live-week",
			Type:        AdTypeInterstitial,
			Title:       "Live Week is here",
			Description: "Catch your favourite creators streaming all week long.",
			ImageURL:    "https://cdn.pulse.social/ads/live-week.jpg",
			CTAText:     "Watch live",
			TargetURL:   "https://pulse.social/live",
		},
		{
			ID:          "interstitial-headphones",
			Type:        AdTypeInterstitial,
			Title:       "Hear every beat",
			Description: "Noise-cancelling headphones, 30% off this weekend.",
			ImageURL:    "https://cdn.pulse.social/ads/headphones.jpg",
			CTAText:     "Shop now",
			TargetURL:   "https://shop.example.com/headphones",
		},
		{
			ID:          "native-coffee",
			Type:        AdTypeNative,
			Title:       "Your new morning ritual",
			Description: "Single-origin beans roasted to order and shipped fresh.",
			ImageURL:    "https://cdn.pulse.social/ads/coffee.jpg",
			CTAText:     "Learn more",
			TargetURL:   "https://coffee.example.com",
		},
		{
			ID:          "native-language-app",
			Type:        AdTypeNative,
			Title:       "Learn a language in 10 minutes a day",
			Description: "Bite-sized lessons that fit between posts.",
			ImageURL:    "https://cdn.pulse.social/ads/language.jpg",
			CTAText:     "Start free",
			TargetURL:   "https://lingo.example.com",
		},
		{
			ID:          "native-running-club",
			Type:        AdTypeNative,
			Title:       "Find your running crew",
			Description: "Local clubs, weekly routes, zero pressure.",
			ImageURL:    "https://cdn.pulse.social/ads/running.jpg",
			CTAText:     "Find a club",
			TargetURL:   "https://run.example.com",
		},
		{
			ID:          "rewarded-boost",
			Type:        AdTypeRewarded,
			Title:       "Watch to boost your post",
			Description: "Watch a short video and your next post gets extra reach.",
			ImageURL:    "https://cdn.pulse.social/ads/boost.jpg",
			CTAText:     "Watch",
			TargetURL:   "https://pulse.social/boost",
		},
	}
}

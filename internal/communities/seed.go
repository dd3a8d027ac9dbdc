package communities

import "time"

var seedCreatedAt = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// SeedCommunities returns the built-in communities. Each call returns a fresh
// copy so callers may mutate counts freely.
func SeedCommunities() []Community {
	return []Community{
		{
			ID:               "seed-photography",
			Name:             "Street Photography",
			Description:      "Candid moments from cities around the world.",
			Icon:             "camera",
			MemberCount:      12840,
			Category:         "art",
			Rules:            []string{"Credit the photographer", "No heavy filters"},
			PointsOfInterest: []string{"composition", "film", "urban"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
		{
			ID:               "seed-home-cooking",
			Name:             "Home Cooking",
			Description:      "Recipes, techniques and kitchen wins.",
			Icon:             "chef-hat",
			MemberCount:      30215,
			Category:         "food",
			Rules:            []string{"Share the recipe", "Be kind to beginners"},
			PointsOfInterest: []string{"baking", "meal prep", "vegetarian"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
		{
			ID:               "seed-indie-games",
			Name:             "Indie Games",
			Description:      "Devlogs and discoveries from small studios.",
			Icon:             "gamepad",
			MemberCount:      8761,
			Category:         "gaming",
			Rules:            []string{"No piracy links", "Tag spoilers"},
			PointsOfInterest: []string{"pixel art", "game jams", "devlogs"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
		{
			ID:               "seed-trail-running",
			Name:             "Trail Running",
			Description:      "Routes, gear and race reports off the pavement.",
			Icon:             "mountain",
			MemberCount:      4302,
			Category:         "fitness",
			Rules:            []string{"Leave no trace"},
			PointsOfInterest: []string{"ultras", "gear", "routes"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
		{
			ID:               "seed-late-night",
			Name:             "Late Night",
			Description:      "After-hours talk for adults.",
			Icon:             "moon",
			MemberCount:      2190,
			Category:         "lifestyle",
			Rules:            []string{"18+ only", "No harassment"},
			IsNSFW:           true,
			PointsOfInterest: []string{"nightlife", "dating"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
		{
			ID:               "seed-new-members",
			Name:             "New on Pulse",
			Description:      "Say hello and find your people.",
			Icon:             "wave",
			MemberCount:      0,
			Category:         "community",
			Rules:            []string{"Introduce yourself"},
			PointsOfInterest: []string{"introductions"},
			CreatorID:        "pulse",
			CreatedAt:        seedCreatedAt,
		},
	}
}

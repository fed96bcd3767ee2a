// Package progress tracks per-user usage counters and derives the
// achievement set from them. Unlocks are monotonic: once an achievement id
// is in the persisted unlocked set it never leaves it.
package progress

// Achievement is a gamification milestone. Unlocked is derived at
// evaluation time from counters and the persisted unlocked-id set.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	Unlocked    bool   `json:"unlocked"`
}

// Counters are the persisted inputs to achievement predicates. They only
// ever grow: the count increments, the visited set gains members, and a
// dark-theme switch is remembered by the unlocked set even if the user
// switches back.
type Counters struct {
	RecognitionCount int
	VisitedLocations map[string]bool
	ThemeIsDark      bool
}

func (c Counters) visited(ids ...string) bool {
	for _, id := range ids {
		if c.VisitedLocations[id] {
			return true
		}
	}
	return false
}

type definition struct {
	Achievement
	predicate func(Counters) bool
}

var definitions = []definition{
	{
		Achievement: Achievement{
			ID:          "first_scan",
			Title:       "First Discovery",
			Description: "Scan your first Moroccan landmark",
			Icon:        "camera",
			Points:      10,
		},
		predicate: func(c Counters) bool { return c.RecognitionCount >= 1 },
	},
	{
		Achievement: Achievement{
			ID:          "five_scans",
			Title:       "Curious Explorer",
			Description: "Scan 5 different landmarks",
			Icon:        "compass",
			Points:      25,
		},
		predicate: func(c Counters) bool { return c.RecognitionCount >= 5 },
	},
	{
		Achievement: Achievement{
			ID:          "ten_scans",
			Title:       "Morocco Expert",
			Description: "Scan 10 different landmarks",
			Icon:        "star",
			Points:      50,
		},
		predicate: func(c Counters) bool { return c.RecognitionCount >= 10 },
	},
	{
		Achievement: Achievement{
			ID:          "visit_marrakech",
			Title:       "Marrakech Explorer",
			Description: "Visit a landmark in Marrakech",
			Icon:        "map-pin",
			Points:      15,
		},
		predicate: func(c Counters) bool { return c.visited("jemaa-el-fna", "bahia-palace") },
	},
	{
		Achievement: Achievement{
			ID:          "visit_rabat",
			Title:       "Rabat Explorer",
			Description: "Visit a landmark in Rabat",
			Icon:        "map-pin",
			Points:      15,
		},
		predicate: func(c Counters) bool { return c.visited("hassan-tower") },
	},
	{
		Achievement: Achievement{
			ID:          "night_mode",
			Title:       "Night Owl",
			Description: "Switch to dark mode",
			Icon:        "moon",
			Points:      5,
		},
		predicate: func(c Counters) bool { return c.ThemeIsDark },
	},
}

// evaluate derives the achievement list: unlocked when the predicate holds
// now or the id is already in the persisted unlocked set.
func evaluate(counters Counters, unlockedIDs map[string]bool) []Achievement {
	out := make([]Achievement, 0, len(definitions))
	for _, def := range definitions {
		a := def.Achievement
		a.Unlocked = unlockedIDs[a.ID] || def.predicate(counters)
		out = append(out, a)
	}
	return out
}

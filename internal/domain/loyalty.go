package domain

import "sort"

// LoyaltyLevel is a named threshold tier configured by a streamer. A viewer
// holds the level once their point balance for that streamer reaches
// PointsRequired. Ids are stable but not guaranteed contiguous.
type LoyaltyLevel struct {
	ID             string `json:"id"`
	StreamerID     string `json:"streamer_id"`
	Name           string `json:"name"`
	PointsRequired int64  `json:"points_required"`
	Reward         string `json:"reward,omitempty"`
}

// SortLevels orders levels ascending by PointsRequired. Resolve, Rank and
// ProgressFor all require this ordering.
func SortLevels(levels []LoyaltyLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].PointsRequired < levels[j].PointsRequired
	})
}

// Resolve maps a balance onto the sorted level ladder. The current level is
// the last threshold at or below the balance, the next level is the first
// threshold above it. Either may be nil: nil current means the viewer has not
// reached any level, nil next means the ladder is maxed out. An empty ladder
// resolves to (nil, nil).
func Resolve(levels []LoyaltyLevel, balance int64) (current, next *LoyaltyLevel) {
	for i := range levels {
		if balance >= levels[i].PointsRequired {
			current = &levels[i]
		} else {
			next = &levels[i]
			break
		}
	}
	return current, next
}

// Rank returns the position of the level with the given id in the sorted
// ladder, or -1 when the id is absent. Level-up comparisons use ranks rather
// than ids because ids carry no ordering.
func Rank(levels []LoyaltyLevel, levelID string) int {
	for i := range levels {
		if levels[i].ID == levelID {
			return i
		}
	}
	return -1
}

// LevelProgress describes how far a balance has advanced towards the next
// level, for the points_updated payload and progress bars.
type LevelProgress struct {
	Current int64  `json:"current"`
	Max     int64  `json:"max"`
	Label   string `json:"label"`
}

// ProgressFor computes the viewer-facing progress for a balance. With no
// levels configured the viewer is reported under a plain "points" label with
// no ceiling; past the last threshold the bar caps at the balance itself
// ("max level").
func ProgressFor(levels []LoyaltyLevel, balance int64) LevelProgress {
	current, next := Resolve(levels, balance)

	if len(levels) == 0 {
		return LevelProgress{Current: balance, Max: balance, Label: "points"}
	}

	if next == nil {
		name := "legend"
		if current != nil {
			name = current.Name
		}
		return LevelProgress{Current: balance, Max: balance, Label: "max level: " + name}
	}

	return LevelProgress{Current: balance, Max: next.PointsRequired, Label: "points to " + next.Name}
}

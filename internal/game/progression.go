package game

import (
	"math"

	"github.com/birdquest-app/birdquest-backend/internal/models"
)

// FallbackHabitXP is awarded when a completion references a habit id
// that resolves to nothing.
const FallbackHabitXP = 10

// XPForLevel returns the XP needed to clear the given level.
func XPForLevel(level int) int {
	return int(100 * math.Pow(float64(level), 1.5))
}

// SeedsForLevel returns the base seed reward for reaching a level,
// before the equipped-bird multiplier.
func SeedsForLevel(level int) int {
	return 5 + level*2
}

// ApplyXP adds delta XP to the user and resolves any level-ups,
// crediting seeds scaled by the given multiplier. It loops because a
// single delta can cross several thresholds. The user is mutated in
// place; the caller owns persistence.
func ApplyXP(u *models.User, delta int, multiplier float64) (seedsEarned int, levelsGained int) {
	u.XP += delta
	for u.XP >= XPForLevel(u.Level) {
		u.XP -= XPForLevel(u.Level)
		u.Level++
		levelsGained++
		levelSeeds := int(float64(SeedsForLevel(u.Level)) * multiplier)
		seedsEarned += levelSeeds
		u.Seeds += levelSeeds
		u.TotalSeedsEarned += levelSeeds
	}
	return seedsEarned, levelsGained
}

// TotalXP returns the lifetime XP of a user: every cleared level's
// threshold plus the progress within the current one.
func TotalXP(u *models.User) int {
	total := u.XP
	for level := 1; level < u.Level; level++ {
		total += XPForLevel(level)
	}
	return total
}

// EquippedMultiplier resolves the seed multiplier of the user's
// equipped bird, defaulting to 1.0 when nothing is equipped or the
// bird is missing from the catalog.
func (c *Catalog) EquippedMultiplier(u *models.User) float64 {
	if u.CurrentBirdID == nil {
		return 1.0
	}
	bird, ok := c.Bird(*u.CurrentBirdID)
	if !ok {
		return 1.0
	}
	return Multiplier(bird.Rarity, u.CurrentBirdShiny)
}

package game

// Rarity holds the seed-earning multiplier and purchase cost for one
// rarity key. Shiny variants live under "<rarity>_shiny" keys and are
// never purchased directly, so their cost is informational only.
type Rarity struct {
	Multiplier float64
	Cost       int
}

// RarityOrder is the fixed ordering of base rarities, cheapest first.
var RarityOrder = []string{"common", "uncommon", "rare", "epic", "legendary"}

var Rarities = map[string]Rarity{
	"common":          {Multiplier: 1.0, Cost: 10},
	"common_shiny":    {Multiplier: 1.5, Cost: 15},
	"uncommon":        {Multiplier: 1.2, Cost: 25},
	"uncommon_shiny":  {Multiplier: 1.8, Cost: 40},
	"rare":            {Multiplier: 1.5, Cost: 60},
	"rare_shiny":      {Multiplier: 2.3, Cost: 100},
	"epic":            {Multiplier: 1.7, Cost: 150},
	"epic_shiny":      {Multiplier: 2.7, Cost: 250},
	"legendary":       {Multiplier: 2.0, Cost: 400},
	"legendary_shiny": {Multiplier: 4.0, Cost: 700},
}

// Multiplier returns the seed multiplier for a rarity, honoring the
// shiny variant. Unknown keys fall back to 1.0.
func Multiplier(rarity string, shiny bool) float64 {
	key := rarity
	if shiny {
		key += "_shiny"
	}
	if r, ok := Rarities[key]; ok {
		return r.Multiplier
	}
	return 1.0
}

// Cost returns the purchase cost for a base rarity, or fallback when
// the rarity is not in the table.
func Cost(rarity string, fallback int) int {
	if r, ok := Rarities[rarity]; ok {
		return r.Cost
	}
	return fallback
}

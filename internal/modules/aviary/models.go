package aviary

import (
	"time"

	"github.com/google/uuid"
)

// OwnedBird is a user's ownership record for one catalog bird. There is
// at most one row per (user, bird); a shiny re-roll upgrades the row in
// place instead of duplicating it.
type OwnedBird struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owned_user_bird" json:"user_id"`
	BirdID     int       `gorm:"not null;uniqueIndex:idx_owned_user_bird" json:"bird_id"`
	IsShiny    bool      `gorm:"default:false" json:"is_shiny"`
	AcquiredAt time.Time `json:"acquired_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Outcome describes what a purchase produced.
type Outcome string

const (
	OutcomeNormal       Outcome = "normal"
	OutcomeShiny        Outcome = "shiny"
	OutcomeShinyUpgrade Outcome = "shiny_upgrade"
	OutcomeNoUpgrade    Outcome = "no_upgrade"
)

// --- DTOs ---

type PurchaseRequest struct {
	BirdID int `json:"bird_id"`
}

type PurchaseResponse struct {
	BirdID  int     `json:"bird_id"`
	IsShiny bool    `json:"is_shiny"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message"`
	Seeds   int     `json:"seeds"`
}

type EquipRequest struct {
	BirdID int  `json:"bird_id"`
	Shiny  bool `json:"shiny"`
}

type EquipResponse struct {
	BirdID     int     `json:"bird_id"`
	IsShiny    bool    `json:"is_shiny"`
	Multiplier float64 `json:"multiplier"`
	Message    string  `json:"message"`
}

// ShopBird is a catalog bird annotated with price and the caller's
// ownership state.
type ShopBird struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Rarity        string  `json:"rarity"`
	LevelRequired int     `json:"level_required"`
	Price         int     `json:"price"`
	Multiplier    float64 `json:"multiplier"`
	OwnedNormal   bool    `json:"owned_normal"`
	OwnedShiny    bool    `json:"owned_shiny"`
	Equipped      bool    `json:"equipped"`
}

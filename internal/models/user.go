package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries identity plus the full progression state: XP within the
// current level, seed balance, equipped bird, and streak bookkeeping.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email    string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;default:'user'" json:"role"`

	// Progression. XP is progress within the current level and stays
	// below the level threshold after any engine call.
	XP               int `gorm:"default:0" json:"xp"`
	Level            int `gorm:"default:1" json:"level"`
	Seeds            int `gorm:"default:0" json:"seeds"`
	TotalSeedsEarned int `gorm:"default:0" json:"total_seeds_earned"`

	// Equipped bird (catalog id, nil when nothing is equipped).
	CurrentBirdID    *int `json:"current_bird_id"`
	CurrentBirdShiny bool `gorm:"default:false" json:"current_bird_shiny"`

	// Streak tracking.
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

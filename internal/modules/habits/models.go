package habits

import (
	"time"

	"github.com/google/uuid"
)

// CustomHabit is a user-authored habit. Catalog habits live in the
// static game catalog; only custom ones are rows.
type CustomHabit struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	XP        int       `gorm:"default:10" json:"xp"`
	Category  string    `gorm:"size:50;default:'custom'" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// HiddenHabit suppresses a catalog habit for one user. Catalog entries
// are shared, so "deleting" one is recorded as a hide instead.
type HiddenHabit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hidden_user_habit" json:"user_id"`
	HabitID   int       `gorm:"not null;uniqueIndex:idx_hidden_user_habit" json:"habit_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Completion is an append-only fact: one habit done by one user on one
// calendar day. The unique index is the idempotence backstop for
// concurrent completes.
type Completion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completion_once" json:"user_id"`
	HabitID   int       `gorm:"not null;uniqueIndex:idx_completion_once" json:"habit_id"`
	IsCustom  bool      `gorm:"not null;default:false;uniqueIndex:idx_completion_once" json:"is_custom"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_completion_once" json:"date"`
	XPEarned  int       `gorm:"default:0" json:"xp_earned"`
	CreatedAt time.Time `json:"created_at"`
}

// --- DTOs ---

type HabitView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	XP       int    `json:"xp"`
	Category string `json:"category"`
	IsCustom bool   `json:"is_custom"`
}

type AddHabitRequest struct {
	Name     string `json:"name"`
	XP       int    `json:"xp"`
	Category string `json:"category"`
}

type CompleteRequest struct {
	HabitID  FlexID `json:"habit_id"`
	IsCustom bool   `json:"is_custom"`
}

type CompleteResponse struct {
	XPEarned      int    `json:"xp_earned"`
	CurrentXP     int    `json:"current_xp"`
	XPNeeded      int    `json:"xp_needed"`
	Level         int    `json:"level"`
	LeveledUp     bool   `json:"leveled_up"`
	SeedsEarned   int    `json:"seeds_earned"`
	Seeds         int    `json:"seeds"`
	CurrentStreak int    `json:"current_streak"`
	HabitID       string `json:"habit_id"`
}

type ListResponse struct {
	Habits         []HabitView `json:"habits"`
	CompletedToday []string    `json:"completed_today"`
}

type StatsResponse struct {
	Streak           int            `json:"streak"`
	LongestStreak    int            `json:"longest_streak"`
	Level            int            `json:"level"`
	TotalXP          int            `json:"total_xp"`
	Seeds            int            `json:"seeds"`
	DailyCompletions map[string]int `json:"daily_completions"`
}

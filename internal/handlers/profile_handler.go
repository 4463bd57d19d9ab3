package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/birdquest-app/birdquest-backend/internal/dto"
	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/identity"
	"github.com/birdquest-app/birdquest-backend/internal/models"
	"github.com/birdquest-app/birdquest-backend/internal/modules/habits"
)

type ProfileHandler struct {
	db      *gorm.DB
	catalog *game.Catalog
	habits  *habits.Service
}

func NewProfileHandler(db *gorm.DB, catalog *game.Catalog, habitsService *habits.Service) *ProfileHandler {
	return &ProfileHandler{db: db, catalog: catalog, habits: habitsService}
}

// Profile handles GET /p/profile.
func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}

	xpNeeded := game.XPForLevel(user.Level)
	xpPercent := 0.0
	if xpNeeded > 0 {
		xpPercent = float64(user.XP) / float64(xpNeeded) * 100
	}

	var bird fiber.Map
	if user.CurrentBirdID != nil {
		if b, ok := h.catalog.Bird(*user.CurrentBirdID); ok {
			bird = fiber.Map{
				"id":         b.ID,
				"name":       b.Name,
				"rarity":     b.Rarity,
				"shiny":      user.CurrentBirdShiny,
				"multiplier": game.Multiplier(b.Rarity, user.CurrentBirdShiny),
			}
		}
	}

	var lastActivity *string
	if user.LastActivityDate != nil {
		s := user.LastActivityDate.Format("2006-01-02")
		lastActivity = &s
	}

	return c.JSON(fiber.Map{
		"id":                 user.ID,
		"username":           user.Username,
		"email":              user.Email,
		"level":              user.Level,
		"xp":                 user.XP,
		"xp_needed":          xpNeeded,
		"xp_percent":         xpPercent,
		"total_xp":           game.TotalXP(&user),
		"seeds":              user.Seeds,
		"total_seeds_earned": user.TotalSeedsEarned,
		"seeds_per_level":    game.SeedsForLevel(user.Level),
		"current_streak":     user.CurrentStreak,
		"longest_streak":     user.LongestStreak,
		"last_activity_date": lastActivity,
		"current_bird":       bird,
	})
}

// Stats handles GET /p/stats.
func (h *ProfileHandler) Stats(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	stats, err := h.habits.WeeklyStats(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load stats",
		})
	}
	return c.JSON(stats)
}

// Checkin handles POST /p/streak/checkin. Opening the app counts as
// activity for streak purposes even without a completion.
func (h *ProfileHandler) Checkin(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.habits.Checkin(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check in",
		})
	}

	return c.JSON(fiber.Map{
		"current_streak": user.CurrentStreak,
		"longest_streak": user.LongestStreak,
	})
}

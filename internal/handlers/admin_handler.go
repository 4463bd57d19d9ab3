package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/birdquest-app/birdquest-backend/internal/dto"
	"github.com/birdquest-app/birdquest-backend/internal/models"
	"github.com/birdquest-app/birdquest-backend/internal/modules/aviary"
	"github.com/birdquest-app/birdquest-backend/internal/modules/flock"
	"github.com/birdquest-app/birdquest-backend/internal/modules/habits"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// Stats handles GET /admin/stats with aggregate counts across the system.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	counts := map[string]interface{}{
		"users":       &models.User{},
		"completions": &habits.Completion{},
		"owned_birds": &aviary.OwnedBird{},
		"groups":      &flock.Group{},
		"challenges":  &flock.Challenge{},
	}

	out := fiber.Map{}
	for name, model := range counts {
		var n int64
		if err := h.db.Model(model).Count(&n).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to load stats",
			})
		}
		out[name] = n
	}

	var shinies int64
	if err := h.db.Model(&aviary.OwnedBird{}).Where("is_shiny = ?", true).Count(&shinies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load stats",
		})
	}
	out["shiny_birds"] = shinies

	return c.JSON(out)
}

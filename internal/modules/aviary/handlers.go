package aviary

import (
	"errors"

	"github.com/birdquest-app/birdquest-backend/internal/dto"
	"github.com/birdquest-app/birdquest-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Shop handles GET /aviary/shop - full catalog with prices and
// ownership flags.
func (h *Handler) Shop(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	shop, err := h.service.Shop(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load shop",
		})
	}
	return c.JSON(fiber.Map{"birds": shop})
}

// Collection handles GET /aviary/collection - owned birds only.
func (h *Handler) Collection(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	birds, err := h.service.Collection(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load collection",
		})
	}
	return c.JSON(fiber.Map{"birds": birds})
}

// Purchase handles POST /aviary/purchase - buys or re-rolls a bird.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.service.Purchase(userID, req.BirdID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBirdNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Bird not found",
			})
		case errors.Is(err, ErrInsufficientSeeds):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Not enough seeds!",
			})
		case errors.Is(err, ErrLevelLocked):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Level up to unlock this bird",
			})
		case errors.Is(err, ErrAlreadyMaxed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "You already own the shiny version!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to purchase bird",
		})
	}

	return c.JSON(resp)
}

// Equip handles POST /aviary/equip - sets the active bird.
func (h *Handler) Equip(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req EquipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.service.Equip(userID, req.BirdID, req.Shiny)
	if err != nil {
		switch {
		case errors.Is(err, ErrBirdNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Bird not found",
			})
		case errors.Is(err, ErrNotOwned):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "You do not own this bird!",
			})
		case errors.Is(err, ErrShinyNotOwned):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "You do not have the shiny version!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to equip bird",
		})
	}

	return c.JSON(resp)
}

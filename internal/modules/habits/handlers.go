package habits

import (
	"errors"
	"time"

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

// List handles GET /habits - visible habits plus today's completions.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	views, err := h.service.ListVisible(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list habits",
		})
	}
	completed, err := h.service.CompletedToday(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list completions",
		})
	}

	return c.JSON(ListResponse{Habits: views, CompletedToday: completed})
}

// Add handles POST /habits - creates a custom habit.
func (h *Handler) Add(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req AddHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	habit, err := h.service.AddCustom(userID, req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Habit name is required",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create habit",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(HabitView{
		ID:       Ref{ID: int(habit.ID), Custom: true}.String(),
		Name:     habit.Name,
		XP:       habit.XP,
		Category: habit.Category,
		IsCustom: true,
	})
}

// Complete handles POST /habits/complete - records today's completion
// and returns the progression result.
func (h *Handler) Complete(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ref, err := ParseRef(req.HabitID.String(), req.IsCustom)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid habit ID",
		})
	}

	resp, err := h.service.Complete(userID, ref, time.Now())
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Already completed today!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to complete habit",
		})
	}

	return c.JSON(resp)
}

// Delete handles DELETE /habits/:id - deletes a custom habit or hides
// a catalog habit, depending on the ref.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	ref, err := ParseRef(c.Params("id"), false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid habit ID",
		})
	}

	if ref.Custom {
		err = h.service.DeleteCustom(userID, ref.ID)
	} else {
		err = h.service.Hide(userID, ref.ID)
	}
	if err != nil {
		if errors.Is(err, ErrHabitNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Habit not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete habit",
		})
	}

	return c.JSON(fiber.Map{"message": "Habit removed"})
}

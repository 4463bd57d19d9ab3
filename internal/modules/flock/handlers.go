package flock

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/birdquest-app/birdquest-backend/internal/dto"
	"github.com/birdquest-app/birdquest-backend/internal/identity"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateGroup handles POST /flock/groups.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	group, err := h.service.CreateGroup(userID, req.Name)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			return badRequest(c, "Group name is required")
		}
		return internalError(c, "Failed to create group")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// Groups handles GET /flock/groups.
func (h *Handler) Groups(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	groups, err := h.service.Groups(userID)
	if err != nil {
		return internalError(c, "Failed to list groups")
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// Join handles POST /flock/groups/join.
func (h *Handler) Join(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req JoinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	group, err := h.service.Join(userID, req.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInviteCode):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid invite code",
			})
		case errors.Is(err, ErrAlreadyMember):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "You are already in this group",
			})
		}
		return internalError(c, "Failed to join group")
	}
	return c.JSON(group)
}

// Leave handles POST /flock/groups/:id/leave.
func (h *Handler) Leave(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	if err := h.service.Leave(userID, groupID); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrNotMember):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrLastAdmin):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Promote another admin before leaving",
			})
		}
		return internalError(c, "Failed to leave group")
	}
	return c.JSON(fiber.Map{"message": "Left group"})
}

// Detail handles GET /flock/groups/:id - group info plus the member
// leaderboard.
func (h *Handler) Detail(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	group, members, err := h.service.Detail(userID, groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrNotMember) {
			return notFound(c, "Group not found")
		}
		return internalError(c, "Failed to load group")
	}
	return c.JSON(fiber.Map{"group": group, "members": members})
}

// Promote handles POST /flock/groups/:id/promote.
func (h *Handler) Promote(c *fiber.Ctx) error {
	return h.memberAction(c, h.service.Promote)
}

// Kick handles POST /flock/groups/:id/kick.
func (h *Handler) Kick(c *fiber.Ctx) error {
	return h.memberAction(c, h.service.Kick)
}

func (h *Handler) memberAction(c *fiber.Ctx, action func(actor, group, target uuid.UUID) error) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	var req MemberTargetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := action(userID, groupID, req.UserID); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrNotMember):
			return notFound(c, "Member not found")
		case errors.Is(err, ErrNotAdmin):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin rights required",
			})
		case errors.Is(err, ErrCannotKickSelf):
			return badRequest(c, "You cannot kick yourself")
		}
		return internalError(c, "Failed to update member")
	}
	return c.JSON(fiber.Map{"message": "OK"})
}

// CreateChallenge handles POST /flock/groups/:id/challenges.
func (h *Handler) CreateChallenge(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	var req CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return badRequest(c, "Invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return badRequest(c, "Invalid end date, expected YYYY-MM-DD")
	}

	challenge, err := h.service.CreateChallenge(userID, groupID, req.Name, req.TargetCount, req.XPReward, start, end)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrNotMember):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrNameRequired):
			return badRequest(c, "Challenge name is required")
		case errors.Is(err, ErrInvalidTarget):
			return badRequest(c, "Target count must be positive")
		case errors.Is(err, ErrInvalidDateRange):
			return badRequest(c, "End date must not be before start date")
		}
		return internalError(c, "Failed to create challenge")
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// Challenges handles GET /flock/groups/:id/challenges.
func (h *Handler) Challenges(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	challenges, err := h.service.Challenges(userID, groupID, time.Now())
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrNotMember) {
			return notFound(c, "Group not found")
		}
		return internalError(c, "Failed to list challenges")
	}
	return c.JSON(fiber.Map{"challenges": challenges})
}

// JoinChallenge handles POST /flock/challenges/:id/join.
func (h *Handler) JoinChallenge(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	challengeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid challenge id")
	}

	if err := h.service.JoinChallenge(userID, challengeID, time.Now()); err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			return notFound(c, "Challenge not found")
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrNotMember):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "You are not a member of this group",
			})
		case errors.Is(err, ErrChallengeExpired):
			return badRequest(c, "Challenge has already ended")
		case errors.Is(err, ErrAlreadyParticipating):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "You already joined this challenge",
			})
		}
		return internalError(c, "Failed to join challenge")
	}
	return c.JSON(fiber.Map{"message": "Joined challenge"})
}

// LogProgress handles POST /flock/challenges/:id/log.
func (h *Handler) LogProgress(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	challengeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid challenge id")
	}

	resp, err := h.service.LogProgress(userID, challengeID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			return notFound(c, "Challenge not found")
		case errors.Is(err, ErrNotParticipating):
			return badRequest(c, "Join the challenge first")
		case errors.Is(err, ErrChallengeNotStarted):
			return badRequest(c, "Challenge has not started yet")
		case errors.Is(err, ErrChallengeExpired):
			return badRequest(c, "Challenge has already ended")
		case errors.Is(err, ErrAlreadyLoggedToday):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Already logged today, come back tomorrow!",
			})
		case errors.Is(err, ErrChallengeCompleted):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "You already completed this challenge!",
			})
		}
		return internalError(c, "Failed to log progress")
	}
	return c.JSON(resp)
}

// Standings handles GET /flock/challenges/:id.
func (h *Handler) Standings(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	challengeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid challenge id")
	}

	standings, err := h.service.Standings(userID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			return notFound(c, "Challenge not found")
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrNotMember):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "You are not a member of this group",
			})
		}
		return internalError(c, "Failed to load standings")
	}
	return c.JSON(fiber.Map{"standings": standings})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

package flock

import (
	"github.com/gofiber/fiber/v2"

	"github.com/birdquest-app/birdquest-backend/internal/config"
)

type Module struct {
	service *Service
}

func NewModule(service *Service) *Module {
	return &Module{service: service}
}

func (m *Module) ID() string { return "flock" }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&Group{},
		&Membership{},
		&Challenge{},
		&Participant{},
		&ChallengeLog{},
	}
}

func (m *Module) RegisterRoutes(router fiber.Router, cfg *config.Config) {
	handler := NewHandler(m.service)

	router.Get("/flock/groups", handler.Groups)
	router.Post("/flock/groups", handler.CreateGroup)
	router.Post("/flock/groups/join", handler.Join)
	router.Get("/flock/groups/:id", handler.Detail)
	router.Post("/flock/groups/:id/leave", handler.Leave)
	router.Post("/flock/groups/:id/promote", handler.Promote)
	router.Post("/flock/groups/:id/kick", handler.Kick)
	router.Get("/flock/groups/:id/challenges", handler.Challenges)
	router.Post("/flock/groups/:id/challenges", handler.CreateChallenge)
	router.Get("/flock/challenges/:id", handler.Standings)
	router.Post("/flock/challenges/:id/join", handler.JoinChallenge)
	router.Post("/flock/challenges/:id/log", handler.LogProgress)
}

func (m *Module) Service() *Service { return m.service }

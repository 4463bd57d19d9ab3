package habits

import (
	"github.com/birdquest-app/birdquest-backend/internal/config"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	service *Service
}

func NewModule(service *Service) *Module {
	return &Module{service: service}
}

func (m *Module) ID() string { return "habits" }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&CustomHabit{},
		&HiddenHabit{},
		&Completion{},
	}
}

func (m *Module) RegisterRoutes(router fiber.Router, cfg *config.Config) {
	handler := NewHandler(m.service)

	router.Get("/habits", handler.List)
	router.Post("/habits", handler.Add)
	router.Post("/habits/complete", handler.Complete)
	router.Delete("/habits/:id", handler.Delete)
}

// Service exposes the module's service for cross-module wiring.
func (m *Module) Service() *Service { return m.service }

package aviary

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

func (m *Module) ID() string { return "aviary" }

func (m *Module) Models() []interface{} {
	return []interface{}{
		&OwnedBird{},
	}
}

func (m *Module) RegisterRoutes(router fiber.Router, cfg *config.Config) {
	handler := NewHandler(m.service)

	router.Get("/aviary/shop", handler.Shop)
	router.Get("/aviary/collection", handler.Collection)
	router.Post("/aviary/purchase", handler.Purchase)
	router.Post("/aviary/equip", handler.Equip)
}

func (m *Module) Service() *Service { return m.service }

package modules

import (
	"github.com/birdquest-app/birdquest-backend/internal/config"
	"github.com/gofiber/fiber/v2"
)

// Module is the interface every feature module implements.
type Module interface {
	// ID returns the unique module identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the given Fiber group.
	// The group is already prefixed with /api/p and has JWT middleware
	// applied.
	RegisterRoutes(router fiber.Router, cfg *config.Config)
}

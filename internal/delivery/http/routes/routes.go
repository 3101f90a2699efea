package routes

import (
	"jobpilot/internal/delivery/http/handler"
	v1 "jobpilot/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health   *handler.HealthHandler
	auth     fiber.Handler
	handlers v1.Handlers
}

// NewRegistry takes the authentication middleware guarding every /api/v1
// route except auth, health and the websocket.
func NewRegistry(health *handler.HealthHandler, auth fiber.Handler, handlers v1.Handlers) *Registry {
	return &Registry{health: health, auth: auth, handlers: handlers}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health == nil {
		return
	}
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1Group := api.Group("/v1")
	if r.health != nil {
		r.health.RegisterRoutes(v1Group)
	}
	v1.Register(v1Group, r.auth, r.handlers)
}

package v1

import (
	"jobpilot/internal/delivery/http/handler"
	"jobpilot/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	LinkedIn     *handler.LinkedInHandler
	Jobs         *handler.JobsHandler
	Matches      *handler.MatchHandler
	Applications *handler.ApplicationHandler
	Dashboard    *handler.DashboardHandler
	Settings     *handler.SettingsHandler
	AccountData  *handler.AccountDataHandler
	WS           *ws.Handler
}

type routeRegistrar interface {
	RegisterRoutes(r fiber.Router)
}

// Register mounts public routes first; everything registered after the
// protected group requires a bearer access token.
func Register(r fiber.Router, auth fiber.Handler, h Handlers) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.WS != nil {
		h.WS.RegisterRoutes(r)
	}

	protected := r
	if auth != nil {
		protected = r.Group("", auth)
	}

	// Match routes go before job routes so /jobs/matches is never taken as a job id.
	for _, reg := range []routeRegistrar{
		h.User,
		h.LinkedIn,
		h.Matches,
		h.Jobs,
		h.Applications,
		h.Dashboard,
		h.Settings,
		h.AccountData,
	} {
		reg.RegisterRoutes(protected)
	}
}

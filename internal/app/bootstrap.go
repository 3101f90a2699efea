package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobpilot/internal/delivery/http/handler"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/delivery/http/routes"
	v1 "jobpilot/internal/delivery/http/routes/v1"
	"jobpilot/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Fiber *fiber.App
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	authMw := middleware.NewAuthMiddleware(c.JWT)
	uc := c.Usecases

	checks := map[string]handler.Pinger{"database": c.DB, "redis": nil}
	if c.Cache.Available() {
		checks["redis"] = c.Cache
	}

	routes.NewRegistry(handler.NewHealthHandler(checks), authMw.Middleware(), v1.Handlers{
		Auth:         handler.NewAuthHandler(uc.Auth),
		User:         handler.NewUserHandler(uc.User),
		LinkedIn:     handler.NewLinkedInHandler(uc.LinkedIn, uc.Profile),
		Jobs:         handler.NewJobsHandler(uc.Jobs, uc.Matching),
		Matches:      handler.NewMatchHandler(uc.Matching),
		Applications: handler.NewApplicationHandler(uc.Applications),
		Dashboard:    handler.NewDashboardHandler(uc.Summary, nil),
		Settings:     handler.NewSettingsHandler(uc.Settings),
		AccountData:  handler.NewAccountDataHandler(uc.AccountData),
		WS:           ws.NewHandler(c.Hub, authMw, c.Logger),
	}).Register(app)
}

// Serve runs the HTTP server and the notification hub until ctx is done,
// then shuts the server down gracefully.
func Serve(ctx context.Context, c *Container) error {
	addr, err := ListenAddr(c.Config.App.HTTPPort)
	if err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go c.Hub.Run(hubCtx)

	a := New(c)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	c.Logger.Info("http server listening", zap.String("addr", addr), zap.String("env", c.Config.App.Environment))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tatweer-edu/visit-plans-api/internal/config"
	"github.com/tatweer-edu/visit-plans-api/internal/handler"
	"github.com/tatweer-edu/visit-plans-api/internal/middleware"
	"github.com/tatweer-edu/visit-plans-api/internal/observability"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	PlanHandler    *handler.PlanHandler
	ManagerHandler *handler.ManagerHandler
	FeedHandler    *handler.FeedHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.PlanHandler != nil {
		plans := api.Group("/plans", jwtMiddleware, middleware.RequireRole(service.RoleSupervisor, service.RoleManager))
		deps.PlanHandler.Register(plans)
	}

	manager := api.Group("/manager", jwtMiddleware, middleware.RequireRole(service.RoleManager))
	if deps.ManagerHandler != nil {
		deps.ManagerHandler.Register(manager)
	}
	if deps.FeedHandler != nil {
		deps.FeedHandler.Register(manager)
	}
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-fixit/issue-service/internal/api/http/handlers"
	"github.com/campus-fixit/issue-service/internal/auth"
	"github.com/campus-fixit/issue-service/internal/domain"
	"github.com/campus-fixit/issue-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	AdminIssues    *handlers.AdminIssuesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	// Redis backs the auth throttle; nil disables it.
	Redis         redis.UniversalClient
	AuthPerMinute int
	UploadsDir    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Index)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir, fiber.Static{MaxAge: 86400})
	}

	api := app.Group("/api")

	throttle := RateLimit(cfg.Redis, RateLimitConfig{
		Limit:  cfg.AuthPerMinute,
		Window: time.Minute,
		Prefix: "fixit:auth",
	}, cfg.Logger, cfg.Metrics)
	authGroup := api.Group("/auth", throttle)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	students := api.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleStudent))
	students.Post("/", cfg.Issues.CreateIssue)
	students.Get("/my-issues", cfg.Issues.MyIssues)
	students.Get("/", cfg.Issues.ListIssues)
	students.Get("/:id", cfg.Issues.GetIssue)

	admins := api.Group("/admin/issues", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admins.Get("/", cfg.AdminIssues.ListIssues)
	admins.Put("/:id", cfg.AdminIssues.UpdateIssue)
	admins.Put("/:id/resolve", cfg.AdminIssues.ResolveIssue)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amelio/internal/api/http/handlers"
	"github.com/spec-kit/amelio/internal/auth"
	"github.com/spec-kit/amelio/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Courses        *handlers.CoursesHandler
	Tickets        *handlers.TicketsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/activate/:code", cfg.Users.Activate)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/auth/password", cfg.Auth.ChangePassword)

	protected.Get("/courses", cfg.Courses.ListNames)

	// Role gates go on single routes: Use on the empty prefix would cover every later route.
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	protected.Get("/courses/all", adminOnly, cfg.Courses.List)
	protected.Post("/courses", adminOnly, cfg.Courses.Create)
	protected.Post("/courses/:id/enable", adminOnly, cfg.Courses.Enable)
	protected.Get("/users", adminOnly, cfg.Users.List)
	protected.Get("/users/names", adminOnly, cfg.Users.ListNames)
	protected.Post("/users", adminOnly, cfg.Users.Invite)
	protected.Get("/metrics", adminOnly, cfg.Metrics.Snapshot)

	reviewer := auth.RequireRole(domain.RoleTutor)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/mine", cfg.Tickets.ListOwnTickets)
	protected.Get("/tickets/assigned", cfg.Tickets.ListAssignedTickets)
	protected.Get("/tickets/search", cfg.Tickets.SearchTickets)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	protected.Post("/tickets/:id/activate", reviewer, cfg.Tickets.Activate)
	protected.Post("/tickets/:id/status", reviewer, cfg.Tickets.ChangeStatus)
	protected.Post("/tickets/:id/forward", reviewer, cfg.Tickets.Forward)
	protected.Post("/tickets/:id/priority", reviewer, cfg.Tickets.UpdatePriority)
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/config"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/http/handler"
	"github.com/tuncrm/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/tuncrm/crm-api/docs" // registers the generated swagger spec
)

// Handlers groups every HTTP handler mounted by the router
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Company     *handler.CompanyHandler
	Opportunity *handler.OpportunityHandler
	Activity    *handler.ActivityHandler
	User        *handler.UserHandler
	Task        *handler.TaskHandler
	Dashboard   *handler.DashboardHandler
	Export      *handler.ExportHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", h.Health.Live)
	r.Get("/health/db", h.Health.Database)
	r.Get("/health/ready", h.Health.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.LimitByUser)

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/change-password", h.Auth.ChangePassword)

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", h.Company.List)
				r.Post("/", h.Company.Create)
				r.Get("/{id}", h.Company.GetByID)
				r.Put("/{id}", h.Company.Update)
				r.Delete("/{id}", h.Company.Delete)
			})

			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", h.Opportunity.List)
				r.Post("/", h.Opportunity.Create)
				r.Get("/{id}", h.Opportunity.GetByID)
				r.Put("/{id}", h.Opportunity.Update)
				r.Patch("/{id}/stage", h.Opportunity.UpdateStage)
				r.Delete("/{id}", h.Opportunity.Delete)
			})

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", h.Activity.List)
				r.Post("/", h.Activity.Create)
				r.Get("/{id}", h.Activity.GetByID)
				r.Put("/{id}", h.Activity.Update)
				r.Delete("/{id}", h.Activity.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.User.List)
				r.Get("/{id}", h.User.GetByID)
				r.Get("/{id}/tasks", h.User.Tasks)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleManager))
					r.Post("/", h.User.Create)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Delete)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Task.List)
				r.Post("/", h.Task.Create)
				r.Get("/overdue", h.Task.Overdue)
				r.Get("/due-today", h.Task.DueToday)
				r.Get("/{id}", h.Task.GetByID)
				r.Put("/{id}", h.Task.Update)
				r.Delete("/{id}", h.Task.Delete)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", h.Dashboard.Stats)
				r.Get("/stage-distribution", h.Dashboard.StageDistribution)
				r.Get("/activity-trend", h.Dashboard.ActivityTrend)
				r.Get("/revenue-trend", h.Dashboard.RevenueTrend)
				r.Get("/city-distribution", h.Dashboard.CityDistribution)
				r.Get("/task-status-distribution", h.Dashboard.TaskStatusDistribution)
				r.Get("/recent-activities", h.Dashboard.RecentActivities)
			})

			r.Route("/export", func(r chi.Router) {
				r.Get("/companies", h.Export.Companies)
				r.Get("/opportunities", h.Export.Opportunities)
				r.Get("/activities", h.Export.Activities)
				r.Get("/stage-distribution", h.Export.StageDistribution)
				r.Get("/archives/*", h.Export.Archive)
			})
		})
	})

	return r
}

package routes

import (
	"github.com/ajeetyadav200/sarkari-job-backend/internal/auth"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/handlers"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/middleware"
	"github.com/ajeetyadav200/sarkari-job-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.Post("/auth/logout", authHandler.Logout)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		r.Get("/auth/me", authHandler.Me)

		// Admin-only account management
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Post("/accounts", accountHandler.Create)
			r.Get("/accounts", accountHandler.List)
			r.Get("/accounts/{id}", accountHandler.Get)
			r.Post("/accounts/{id}/unlock", accountHandler.Unlock)
			r.Post("/accounts/{id}/activate", accountHandler.Activate)
			r.Post("/accounts/{id}/deactivate", accountHandler.Deactivate)
			r.Delete("/accounts/{id}", accountHandler.Delete)
		})
	})
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/weeklygoals/weekly-goals-be/internal/api/handlers"
	"github.com/weeklygoals/weekly-goals-be/internal/auth"
	"github.com/weeklygoals/weekly-goals-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	goalService services.GoalServiceProvider,
	tokens *auth.TokenManager,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the SPA frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(userService, tokens)
	goalHandler := handlers.NewGoalHandler(goalService)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/goals", func(r chi.Router) {
		r.Use(tokens.Middleware(userService))
		r.Get("/current", goalHandler.GetCurrent)
		r.Post("/", goalHandler.Create)
		r.Patch("/{id}/toggle", goalHandler.Toggle)
		r.Patch("/{id}", goalHandler.UpdateText)
	})

	return r
}

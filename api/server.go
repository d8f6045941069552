/*
server.go - HTTP router and middleware configuration.

ROUTER: chi

MIDDLEWARE STACK:
  1. CORS:          Cross-origin requests for the frontend
  2. RequestLogger: Structured request logging (httplog over slog, ECS schema)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. Heartbeat:     Liveness probe on /ping

ROUTE GROUPS:
  /api/auth/*            Login (public)
  /api/me                Caller's own account
  /api/accounts/*        Account management, balances, history
  /api/leave-requests/*  Leave submission and approval transitions
  /api/ccl-work/*        Extra-duty submission and approval transitions

All routes except login and the heartbeat require a bearer token.
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger builds the application's structured logger. Level comes from
// config ("debug", "info", "warn", "error").
func NewLogger(level, env string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-engine"),
		slog.String("env", env),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/me", h.Me)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.ListAccounts)
				r.Post("/", h.CreateAccount)
				r.Get("/{id}/balances", h.GetBalances)
				r.Get("/{id}/history/{kind}", h.GetHistory)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Get("/", h.ListLeave)
				r.Post("/", h.SubmitLeave)
				r.Get("/{id}", h.GetLeave)
				r.Post("/{id}/transition", h.TransitionLeave)
			})

			r.Route("/ccl-work", func(r chi.Router) {
				r.Get("/", h.ListCCLWork)
				r.Post("/", h.SubmitCCLWork)
				r.Get("/{id}", h.GetCCLWork)
				r.Post("/{id}/transition", h.TransitionCCLWork)
			})
		})
	})

	return r
}

package router

import (
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/commwatch/commwatch/internal/middleware"
	"github.com/commwatch/commwatch/internal/middleware/metrics"
	rl "github.com/commwatch/commwatch/internal/middleware/ratelimiter"
	"github.com/commwatch/commwatch/internal/setup"
)

// New configures the router with all routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints in that group combined
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// API CSP: strict policy (JSON only, no scripts/styles needed)
	apiCSP := "default-src 'none'; frame-ancestors 'none'"
	isHTTPS := strings.HasPrefix(deps.Config.Public.BaseURL, "https://")
	r.Use(mw.SecurityHeadersWithCSP(isHTTPS, apiCSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Evidence downloads
	r.Mount("/uploads", deps.Uploads)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints, rate limited by IP
		r.With(mw.RateLimit(rl.Submissions(), mw.GetIP)).Post("/report", h.SubmitReport)
		r.With(mw.RateLimit(rl.Login(), mw.GetIP)).Post("/login", h.Login)
		r.Get("/stats", h.Stats)

		// Administrator endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())

			r.Get("/reports", h.SearchReports)
			r.Get("/report/{id}", h.GetReport)
			r.Post("/report/{id}/forward", h.ForwardReport)
			r.Get("/email-groups", h.GetEmailGroups)
		})

		// Superadmin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMw.SuperadminOnly())

			r.Put("/email-groups/{id}", h.UpdateEmailGroup)
			r.Post("/users", h.CreateUser)
		})
	})

	return r
}

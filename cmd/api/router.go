package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmichard/tourneyhub/internal/config"
	"github.com/jmichard/tourneyhub/internal/handlers"
	"github.com/jmichard/tourneyhub/internal/middleware"
	"github.com/jmichard/tourneyhub/internal/repo"
	"github.com/jmichard/tourneyhub/internal/service"
	"github.com/jmichard/tourneyhub/internal/token"
)

// newRouter wires repositories, services, and handlers into the API surface.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	tournamentRepo := repo.NewTournamentRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.JWTExpireHours)*time.Hour)
	tournamentService := service.NewTournamentService(database, tournamentRepo, auditRepo)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, AuditRepo: auditRepo, Issuer: issuer}
	tournamentHandler := &handlers.TournamentHandler{Service: tournamentService}

	hsts := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	includeStack := cfg.Env == "dev"

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer(includeStack))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(hsts))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/tournaments", func(r chi.Router) {
			// Listing is public; mutations require a verified session.
			r.Get("/", tournamentHandler.ListTournaments)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(issuer))
				r.Post("/", tournamentHandler.CreateTournament)
				r.Post("/{id}/join", tournamentHandler.JoinTournament)
				r.Post("/{id}/leave", tournamentHandler.LeaveTournament)
			})
		})
	})

	return r
}

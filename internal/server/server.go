// internal/server/server.go

// Package server assembles the HTTP API: services over the selected
// store, the middleware stack and the route table.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kulibrary/internal/auth"
	"kulibrary/internal/catalog"
	"kulibrary/internal/config"
	"kulibrary/internal/domain"
	"kulibrary/internal/httpx"
	"kulibrary/internal/ledger"
)

// Server owns the assembled router and the services behind it.
type Server struct {
	router  chi.Router
	Auth    auth.Service
	Catalog catalog.Service
	Ledger  ledger.Service
}

// New wires the services over the given store and builds the router.
func New(cfg config.Config, logger zerolog.Logger, store domain.Store) *Server {
	authSvc := auth.NewService(store, auth.Config{
		SessionTTL:        cfg.SessionTTL,
		EmailDomain:       cfg.EmailDomain,
		AttemptsPerMinute: cfg.AuthAttemptsPerMin,
	})
	catalogSvc := catalog.NewService(store)
	ledgerSvc := ledger.NewService(store, ledger.Config{
		LoanPeriod:  cfg.LoanPeriod,
		MaxRenewals: cfg.MaxRenewals,
	})

	s := &Server{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Ledger:  ledgerSvc,
	}
	s.router = s.routes(cfg, logger)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(cfg config.Config, logger zerolog.Logger) chi.Router {
	authHandler := auth.NewHandler(s.Auth)
	catalogHandler := catalog.NewHandler(s.Catalog)
	ledgerHandler := ledger.NewHandler(s.Ledger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(httpx.RequestLogger(logger))
	r.Use(httpx.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/register", authHandler.HandleRegister)
		// Logout only deletes the presented token, so it stays outside the
		// authenticator: a second call with a dead token still succeeds.
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Get("/books", catalogHandler.HandleList)
		r.Get("/books/{id}", catalogHandler.HandleGet)

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(httpx.Authenticator(s.Auth))

			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/books/borrow", ledgerHandler.HandleBorrow)
			r.Post("/books/return", ledgerHandler.HandleReturn)
			r.Post("/books/renew", ledgerHandler.HandleRenew)
			r.Get("/loans", ledgerHandler.HandleList)
			r.Get("/stats", ledgerHandler.HandleStats)

			r.Group(func(r chi.Router) {
				r.Use(httpx.RequireCatalogManager)
				r.Post("/books", catalogHandler.HandleAdd)
				r.Get("/members", authHandler.HandleMembers)
			})
		})
	})

	return r
}

package server

import (
	"net/http"

	"github.com/cloo-solutions/cravings/internal/api"
	"github.com/cloo-solutions/cravings/internal/api/handlers"
	"github.com/cloo-solutions/cravings/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const defaultMaxBodyBytes int64 = 64 * 1024

type RouterConfig struct {
	Logger        logrus.FieldLogger
	Sessions      middleware.SessionRegistry
	SearchHandler *handlers.SearchHandler
	// BackendProxy is mounted under /api when set. Development only.
	BackendProxy http.Handler
	SearchRate   int
	MaxBodyBytes int64
	SecureCookie bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.BackendProxy != nil {
		r.Mount("/api", http.StripPrefix("/api", cfg.BackendProxy))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.Sessions, cfg.SecureCookie))

		r.Get("/", cfg.SearchHandler.Page)
		r.Get("/state", cfg.SearchHandler.State)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.SearchRate))

			r.Post("/search", cfg.SearchHandler.Search)
			r.Post("/state/search", cfg.SearchHandler.SearchJSON)
		})
	})

	return r
}

// Package api serves subtitle versions over HTTP.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mgpai22/tala/internal/logging"
	"github.com/mgpai22/tala/internal/store"
)

// VersionStore is the persistence the handlers need; *store.Store satisfies it.
type VersionStore interface {
	SaveVersion(ctx context.Context, req store.SaveRequest) (int, error)
	FetchVersion(ctx context.Context, videoID, lang string, n int) (*store.Version, error)
	ListVersions(ctx context.Context, videoID, lang string) ([]store.Version, error)
}

func NewRouter(versions VersionStore, allowedOrigins []string, logger *logging.Logger) *chi.Mux {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger.Named("http")))
	r.Use(cors.Handler(corsOptions(allowedOrigins)))

	h := &versionHandler{store: versions, logger: logger.Named("api")}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		r.Route("/videos/{videoID}/languages/{lang}/versions", func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/", h.save)
			r.Get("/{version}", h.fetch)
		})
	})
	return r
}

func corsOptions(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// credentials are never sent to a wildcard origin
	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}

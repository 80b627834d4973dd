// Package router monta as rotas HTTP da aplicação.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/adapters/http/handlers"
	"github.com/dgeene/comment-limiter/internal/adapters/http/middleware"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

type Deps struct {
	Limiter ports.Limiter
	Metrics http.Handler
	Logger  zerolog.Logger
}

func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/healthz", handlers.HealthHandler)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.With(middleware.Identity).Post("/comments", handlers.NewCommentHandler(deps.Limiter, deps.Logger))

	return r
}

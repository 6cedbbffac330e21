// Package api exposes the admin HTTP surface over the credential and session
// stores: login, logout, session inspection, and user management.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/gatehouse/credential"
	"github.com/jmcleod/gatehouse/session"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	users       *credential.Store
	sessions    *session.Manager
	rateLimiter *loginRateLimiter
	audit       *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// New creates a new API instance.
func New(users *credential.Store, sessions *session.Manager, opts ...Option) *API {
	a := &API{
		users:       users,
		sessions:    sessions,
		rateLimiter: newLoginRateLimiter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Handle("/docs*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Post("/auth/login", a.handleLogin)
	r.Post("/auth/logout", a.handleLogout)
	r.Post("/auth/forgot-password", a.handleForgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(a.RequireAuth)
		r.Get("/auth/session", a.handleSession)
		r.Get("/users", a.handleListUsers)
		r.Post("/users", a.handleAddUser)
		r.Put("/users/{userID}", a.handleUpdateUser)
		r.Delete("/users/{userID}", a.handleDeleteUser)
	})

	return r
}

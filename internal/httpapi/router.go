package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/middleware"
	"github.com/ancorit/notesauth/notes"
	"github.com/ancorit/notesauth/provider"
)

// AuthService is the subset of *notesauth.Engine the handlers need.
type AuthService interface {
	Login(ctx context.Context, email, password string) (notesauth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (notesauth.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

// NotesService is the subset of *notes.Service the handlers need.
type NotesService interface {
	List(ctx context.Context) ([]notes.Note, error)
	Get(ctx context.Context, id string) (notes.Note, error)
	Create(ctx context.Context, in notes.Input) (notes.Note, error)
	Update(ctx context.Context, id string, in notes.Input) (notes.Note, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]notes.Note, error)
}

// RouterDeps collects everything NewRouter wires together.
type RouterDeps struct {
	Auth     AuthService
	Provider provider.Provider
	Notes    NotesService
	Logger   *slog.Logger

	// CORSAllowedOrigins are echoed back in Access-Control-Allow-Origin.
	CORSAllowedOrigins []string

	// Metrics serves /metrics when non-nil.
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter builds the route tree.
//
// Middleware order: RequestID → RealIP → Logging → Recoverer → CORS.
// /health, /metrics, /auth/login and /auth/refresh are public; everything
// else sits behind the bearer guard.
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(NewCORSMiddleware(deps.CORSAllowedOrigins))

	authHandler := &authHandler{auth: deps.Auth, logger: logger}
	notesHandler := &notesHandler{notes: deps.Notes, logger: logger}
	guard := middleware.Guard(deps.Provider)

	r.Get("/health", health)
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, deps.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.login)
		r.Post("/refresh", authHandler.refresh)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/logout", authHandler.logout)
			r.Get("/me", authHandler.me)
		})
	})

	r.Route("/notes", func(r chi.Router) {
		r.Use(guard)
		r.Get("/", notesHandler.list)
		r.Post("/", notesHandler.create)
		r.Get("/search", notesHandler.search)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", notesHandler.get)
			r.Put("/", notesHandler.update)
			r.Delete("/", notesHandler.delete)
		})
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

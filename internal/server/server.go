package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/dukerupert/choretracker/internal/apidoc"
	"github.com/dukerupert/choretracker/internal/chore"
	"github.com/dukerupert/choretracker/internal/config"
	"github.com/dukerupert/choretracker/internal/handler"
	"github.com/dukerupert/choretracker/internal/middleware"
	"github.com/dukerupert/choretracker/internal/store"
)

// Version is reported in the API documentation.
var Version = "dev"

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	userStore   *store.UserStore
	taskH       *handler.TaskHandler
	childH      *handler.ChildHandler
	choreV1H    *handler.ChoreHandler
	choreV2H    *handler.ChoreHandler
	userH       *handler.UserHandler
	tokenH      *handler.TokenHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	choreStore := store.NewChoreStore(db)

	handlerLogger := logger.With("component", "handler")
	loc := cfg.Location()

	return &Server{
		db:          db,
		cfg:         cfg,
		userStore:   userStore,
		taskH:       handler.NewTaskHandler(taskStore, cfg.DeletePolicy, handlerLogger),
		childH:      handler.NewChildHandler(childStore, choreStore, cfg.DeletePolicy, handlerLogger),
		choreV1H:    handler.NewChoreHandler(choreStore, childStore, taskStore, handler.ChoreViewV1, loc, handlerLogger),
		choreV2H:    handler.NewChoreHandler(choreStore, childStore, taskStore, handler.ChoreViewV2, loc, handlerLogger),
		userH:       handler.NewUserHandler(userStore, handlerLogger),
		tokenH:      handler.NewTokenHandler(userStore, handlerLogger),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// WithClock pins the date used by the chore upcoming filter.
func (s *Server) WithClock(clock chore.Clock) *Server {
	s.choreV1H.WithClock(clock)
	s.choreV2H.WithClock(clock)
	return s
}

func (s *Server) UserStore() *store.UserStore {
	return s.userStore
}

func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))
	r.Use(chimw.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	// Public routes (no auth required)
	r.Get("/health", s.healthHandler)
	r.Get("/docs/doc.json", apidoc.API(Version).Handler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))
	r.With(s.rateLimited).Get("/token", s.tokenH.Issue)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(s.userStore, s.logger.With("component", "auth")))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/tasks", s.taskH.Routes)
		})
		r.Route("/api/v2", func(r chi.Router) {
			r.Route("/children", s.childH.Routes)
			r.Route("/chores", s.choreV2H.Routes)
		})

		r.Route("/tasks", s.taskH.Routes)
		r.Route("/children", s.childH.Routes)
		r.Route("/chores", s.choreV1H.Routes)
		r.Route("/users", s.userH.Routes)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.ClientIP(s.cfg.Server.TrustProxy), s.cfg.Token.RateLimit, s.cfg.Token.RateWindow)(next)
}

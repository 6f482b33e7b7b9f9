package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multihop-ai/nli-review/internal/catalog"
	"github.com/multihop-ai/nli-review/internal/config"
	"github.com/multihop-ai/nli-review/internal/labeling"
	"github.com/multihop-ai/nli-review/internal/session"
	"github.com/multihop-ai/nli-review/pkg/models"
)

// Server is the HTTP surface of the review engine.
type Server struct {
	router  *chi.Mux
	logger  *zap.Logger
	store   session.Store
	tokens  *session.TokenService
	labeler *labeling.Service
	config  config.Config

	// runtimes caches the loaded examples and catalog per session; it is
	// rebuilt from the persisted session when missing (refresh boundary).
	mu       sync.Mutex
	runtimes map[uuid.UUID]*runtime
}

// runtime is the in-memory working set for one session.
type runtime struct {
	examples []models.Example
	catalog  *catalog.Catalog
}

// ServerConfig holds the server's dependencies.
type ServerConfig struct {
	Logger *zap.Logger
	Store  session.Store
	Config config.Config
}

// NewServer creates the API server with the standard middleware stack and
// all annotation routes mounted.
func NewServer(sc ServerConfig) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	logger := sc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router: r,
		logger: logger,
		store:  sc.Store,
		tokens: session.NewTokenService(session.TokenConfig{
			SecretKey:     sc.Config.SessionSecret,
			TokenDuration: sc.Config.TokenTTL,
		}),
		labeler:  labeling.NewService(labeling.Config{Threshold: sc.Config.VoteThreshold}),
		config:   sc.Config,
		runtimes: map[uuid.UUID]*runtime{},
	}
	r.Use(s.requestLogger)
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionCtx)

			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Get("/views", s.handleListViews)
			r.Route("/views/{view}", func(r chi.Router) {
				r.Get("/", s.handleListView)
				r.Get("/current", s.handleCurrent)
				r.Post("/goto", s.handleGoto)
				r.Post("/next", s.handleNext)
				r.Post("/prev", s.handlePrev)
				r.Post("/search", s.handleSearch)
			})

			r.Route("/examples/{cleanID}", func(r chi.Router) {
				r.Put("/label", s.handleSetOverride)
				r.Delete("/label", s.handleClearOverride)

				r.Route("/fields/{field}", func(r chi.Router) {
					r.Get("/", s.handleGetField)
					r.Put("/", s.handleEditField)
					r.Post("/undo", s.handleUndo)
					r.Post("/redo", s.handleRedo)
					r.Post("/reset", s.handleReset)
				})
			})

			r.Get("/stats", s.handleStats)
			r.Get("/export", s.handleExport)
		})
	})
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

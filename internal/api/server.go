// Package api provides the HTTP API server and handlers for NicheHunt.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/locale"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/ratelimit"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	oauth           *auth.OAuthProvider // nil when OAuth is not configured
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, tokens *auth.TokenService, oauth *auth.OAuthProvider, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Language", "ETag"},
		MaxAge:         300,
	}))
	router.Use(locale.Middleware)
	router.Use(metrics.Middleware)
	router.Use(authMiddleware(tokens))

	humaConfig := huma.DefaultConfig("NicheHunt API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		oauth:           oauth,
		router:          router,
		api:             api,
		authRateLimiter: NewAuthRateLimiter(30, time.Minute, 15),
		logger:          logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerProductRoutes()
	s.registerVoteRoutes()
	s.registerCommentRoutes()
	s.registerCollectionRoutes()
	s.registerTaxonomyRoutes()
	s.registerNotificationRoutes()
	s.registerPlainRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerPlainRoutes wires the routes that bypass huma: binary avatar
// serving, the OAuth browser redirect flow, and Prometheus metrics.
func (s *Server) registerPlainRoutes() {
	s.router.Get("/metrics", metrics.Handler().ServeHTTP)
	s.router.Get("/api/v1/avatars/{userID}", s.handleGetAvatarFile)

	if s.oauth != nil {
		s.router.Route("/api/v1/auth/oauth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.authRateLimiter, s.logger))
			r.Get("/{provider}", s.handleOAuthStart)
			r.Get("/{provider}/callback", s.handleOAuthCallback)
		})
	}
}

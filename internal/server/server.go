package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/KaiWedekind/Portus/internal/auth"
	"github.com/KaiWedekind/Portus/internal/config"
	"github.com/KaiWedekind/Portus/internal/domain"
	"github.com/KaiWedekind/Portus/internal/server/middleware"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
	"github.com/KaiWedekind/Portus/internal/users"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	userSvc    *users.Service
	auth       *auth.Service
	sessions   *redisstore.SessionStore
	providers  map[string]*auth.OAuthProvider
	cfg        *config.Config
	cancel     context.CancelFunc
}

// sessionResolver adapts the Redis session store to the auth middleware.
type sessionResolver struct {
	store *redisstore.SessionStore
}

func (r *sessionResolver) Resolve(ctx context.Context, sessionID string) (uuid.UUID, error) {
	session, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	return session.UserID, nil
}

// New creates a Server with all routes wired. providers may be empty when no
// OAuth sign-in is configured.
func New(cfg *config.Config, userSvc *users.Service, authSvc *auth.Service, sessions *redisstore.SessionStore, userRepo domain.UserRepository, providers map[string]*auth.OAuthProvider) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	// Stops the rate-limiter cleanup goroutines on Shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		router:    router,
		userSvc:   userSvc,
		auth:      authSvc,
		sessions:  sessions,
		providers: providers,
		cfg:       cfg,
		cancel:    cancel,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	resolver := &sessionResolver{store: sessions}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth endpoints.
	// 2. Authenticated admin group for user management and activities.
	router.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated auth routes (sign up, sign in, refresh).
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 10, 20))

			authConfig := huma.DefaultConfig("Portus Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, authSvc, sessions)
		})

		// Admin routes (everything else). The guard inside the lifecycle
		// service re-checks each call; the middleware keeps anonymous and
		// non-admin traffic out of the handlers entirely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret, resolver, userRepo))
			r.Use(middleware.RequireAdmin())
			r.Use(middleware.RateLimit(ctx, 100, 200))

			apiConfig := huma.DefaultConfig("Portus API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, userSvc)
		})
	})

	// OAuth sign-in routes (unauthenticated, browser-driven).
	if len(providers) > 0 {
		router.Route("/oauth", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, 10, 20))
			r.Get("/{provider}", s.handleOAuthStart)
			r.Get("/{provider}/callback", s.handleOAuthCallback)
		})
	}

	// Sign-in landing page. Unauthenticated requests to admin routes are
	// redirected here.
	router.Get(middleware.SignInPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"sign in via POST /api/v1/users/sign_in"}`))
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

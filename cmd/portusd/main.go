package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KaiWedekind/Portus/internal/auth"
	"github.com/KaiWedekind/Portus/internal/config"
	"github.com/KaiWedekind/Portus/internal/directory"
	"github.com/KaiWedekind/Portus/internal/server"
	"github.com/KaiWedekind/Portus/internal/store/postgres"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
	"github.com/KaiWedekind/Portus/internal/users"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Local development overrides; missing .env is fine.
	_ = godotenv.Load()

	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("PORTUS_LOG_LEVEL"))
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("PORTUS_LOG_FORMAT") == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Apply pending schema migrations, then connect to PostgreSQL.
	if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
		return err
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for browser sessions.
	sessions, err := redisstore.NewSessionStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SessionTTL)
	if err != nil {
		return err
	}
	defer func() { _ = sessions.Close() }()

	// Create auth service.
	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Optional external user-directory checker.
	var checker directory.Checker = directory.Disabled{}
	if cfg.Directory.Endpoint != "" {
		checker = directory.NewHTTPChecker(cfg.Directory.Endpoint, cfg.Directory.Timeout)
		log.Info().Str("endpoint", cfg.Directory.Endpoint).Msg("directory checker enabled")
	}

	// Create the user lifecycle service.
	userSvc := users.NewService(store.Users(), store.Activities(), auth.Hasher{}, checker)

	// Optional OAuth sign-in providers.
	providers := make(map[string]*auth.OAuthProvider)
	if cfg.OAuth.Google.ClientID != "" {
		providers["google"] = auth.NewGoogleProvider(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.RedirectURL+"/oauth/google/callback",
		)
		log.Info().Msg("google oauth enabled")
	}
	if cfg.OAuth.GitHub.ClientID != "" {
		providers["github"] = auth.NewGitHubProvider(
			cfg.OAuth.GitHub.ClientID,
			cfg.OAuth.GitHub.ClientSecret,
			cfg.OAuth.RedirectURL+"/oauth/github/callback",
		)
		log.Info().Msg("github oauth enabled")
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(cfg, userSvc, authSvc, sessions, store.Users(), providers)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weeklygoals/weekly-goals-be/internal/api"
	"github.com/weeklygoals/weekly-goals-be/internal/auth"
	"github.com/weeklygoals/weekly-goals-be/internal/config"
	"github.com/weeklygoals/weekly-goals-be/internal/logger"
	"github.com/weeklygoals/weekly-goals-be/internal/password"
	"github.com/weeklygoals/weekly-goals-be/internal/services"
	"github.com/weeklygoals/weekly-goals-be/internal/store"
	"github.com/weeklygoals/weekly-goals-be/internal/store/filestore"
	"github.com/weeklygoals/weekly-goals-be/internal/store/mongostore"
	"github.com/weeklygoals/weekly-goals-be/internal/store/sqlitestore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv, cfg.LogLevel)

	// Set up storage
	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize storage")
	}
	defer st.Close(context.Background())

	// Set up services
	userService := services.NewUserService(st, password.ForScheme(cfg.PasswordScheme))
	goalService := services.NewGoalService(st)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiry)

	// Set up router
	router := api.NewRouter(userService, goalService, tokens)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("driver", cfg.StorageDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		return sqlitestore.New(cfg.DatabasePath)
	case "mongo":
		s := mongostore.New(cfg.MongoURI, cfg.MongoDatabase)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.EnsureConnected(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return filestore.New(cfg.DataDir)
	}
}

// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/smakarov/eventreg/internal/config"
	"github.com/smakarov/eventreg/internal/database"
	"github.com/smakarov/eventreg/internal/handler"
	"github.com/smakarov/eventreg/internal/repository"
	"github.com/smakarov/eventreg/internal/service"
)

func main() {
	ctx := context.Background()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL and migrate ─────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer pool.Close()
	logrus.Info("connected to PostgreSQL")

	if err := database.Migrate(pool); err != nil {
		logrus.Fatalf("migrations: %v", err)
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)

	eventSvc := service.NewEventService(eventRepo, regRepo)
	userSvc := service.NewUserService(userRepo, regRepo)

	eventHandler := handler.NewEventHandler(eventSvc)
	userHandler := handler.NewUserHandler(userSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS

	r.Get("/health", handler.HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Post("/", eventHandler.CreateEvent)
		r.Get("/", eventHandler.ListUpcoming)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Get("/{id}/stats", eventHandler.GetStats)
		r.Post("/{id}/register", eventHandler.Register)
		r.Delete("/{id}/register", eventHandler.Cancel)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateUser)
		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}", userHandler.GetUser)
		r.Get("/{id}/registrations/recent", userHandler.CountRecentRegistrations)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run in background goroutine so we can listen for the shutdown signal.
	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("graceful shutdown failed: %v", err)
	}
	logrus.Info("server stopped")
}

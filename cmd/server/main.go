package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/propleads/intake/internal/auth"
	"github.com/propleads/intake/internal/buyers"
	"github.com/propleads/intake/internal/config"
	"github.com/propleads/intake/internal/db"
	"github.com/propleads/intake/internal/exporter"
	"github.com/propleads/intake/internal/importer"
	"github.com/propleads/intake/internal/middleware"
	"github.com/propleads/intake/internal/repository"
	"github.com/propleads/intake/pkg/validator"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn.Pool, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	buyerRepo := repository.NewBuyerRepository(conn)
	historyRepo := repository.NewBuyerHistoryRepository(conn.Pool)
	userRepo := repository.NewUserRepository(conn.Pool)

	buyerValidator := validator.New()
	buyerService := buyers.NewService(buyerRepo, historyRepo, buyerValidator)
	importService := importer.NewService(buyerRepo, buyerValidator, cfg.ImportMaxRows)
	exportService := exporter.NewService(buyerRepo)

	mux := http.NewServeMux()

	buyerHandler := buyers.NewHTTPHandler(buyerService)
	protected := http.NewServeMux()
	buyerHandler.Register(protected)
	protected.Handle("POST /buyers/import", importer.NewHTTPHandler(importService))
	protected.Handle("GET /buyers/export", exporter.NewHTTPHandler(exportService))

	mux.Handle("POST /auth/demo", auth.NewLoginHandler(userRepo))
	mux.Handle("/buyers", auth.Middleware(protected))
	mux.Handle("/buyers/", auth.Middleware(protected))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("starting lead intake server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

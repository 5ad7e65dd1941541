// Package main our entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/aumanu2/chatdrop/internal"
	"github.com/aumanu2/chatdrop/internal/config"
	"github.com/aumanu2/chatdrop/internal/handler"
	ratelimiter "github.com/aumanu2/chatdrop/internal/rate_limiter"
	"github.com/aumanu2/chatdrop/internal/store"
	"github.com/aumanu2/chatdrop/internal/uploads"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init server
	server := &http.Server{
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	// Init DB. A dead database keeps the server up; handlers answer 503
	// and /test reports what they see.
	log.Println("Initializing Database connection...")

	var db store.Store
	mongoStore, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseName, logger)
	if err != nil {
		logger.Warn("database not available, running degraded", "error", err)
	} else {
		db = mongoStore

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := mongoStore.Ping(pingCtx); err != nil {
			logger.Warn("database ping failed at startup", "error", err)
		}
		cancel()
	}

	// Init uploads directory
	uploadDir, err := uploads.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}

	submitHandler := http.Handler(handler.SubmitMessage(logger, db, uploadDir))
	if cfg.RateLimitRequests > 0 {
		rl := ratelimiter.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, ratelimiter.CleanupOpts{
			TTL:      10 * time.Minute,
			Interval: time.Minute,
		})
		defer rl.Cancel()
		submitHandler = rl.Middleware(submitHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(internal.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(internal.CORS)

	r.NotFound(handler.NotFound())
	r.MethodNotAllowed(handler.MethodNotAllowed())

	r.Get("/", handler.ServeRoot())
	r.Get("/api/hello", handler.ServeHello())
	r.Get("/api/messages", handler.ServeMessages(logger, db))
	r.Method(http.MethodPost, "/api/messages", submitHandler)
	r.Get("/test", handler.ServeDiagnostics(logger, db))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadDir.FileServer()))

	server.Handler = r

	go func() {
		log.Printf("Server starting at %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received; shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	if mongoStore != nil {
		shutdownErr = multierr.Append(shutdownErr, mongoStore.Close(shutdownCtx))
	}
	if shutdownErr != nil {
		log.Printf("shutdown finished with errors: %+v", shutdownErr)
	}

	log.Println("Server stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

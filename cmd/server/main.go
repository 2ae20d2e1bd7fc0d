package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taman-digital/internal/app"
	"taman-digital/internal/config"
	"taman-digital/internal/handler"
	"taman-digital/internal/logger"
	"taman-digital/internal/middleware"
	"taman-digital/internal/service"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}
	logger.SetLevel(cfg.LogLevel)

	// Connect backends and wire services
	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application",
			slog.String("error", err.Error()))
	}

	// Purge expired trash in the background
	var sweeper *service.RetentionSweeper
	if cfg.TrashSweepInterval > 0 {
		sweeper = service.NewRetentionSweeper(a.Content, time.Minute)
		sweeper.Start(cfg.TrashSweepInterval)
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.RegisterRoutes(router, handler.Handlers{
		Health:   handler.NewHealthHandler(a.Pingers, version),
		Posts:    handler.NewPostHandler(a.Content),
		Editor:   handler.NewEditorHandler(a.Editor),
		Users:    handler.NewUserHandler(a.Accounts),
		Messages: handler.NewMessageHandler(a.Messages),
	}, a.Accounts)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			slog.String("port", cfg.ServerPort),
			slog.String("store", cfg.StoreBackend),
			slog.String("snapshots", cfg.SnapshotBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server",
				slog.String("error", err.Error()))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Stop background work before the backends go away
	if sweeper != nil {
		logger.Info("Stopping trash sweeper")
		sweeper.Stop()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error",
			slog.String("error", err.Error()))
	}

	a.Close()
	logger.Info("Server exited")
}

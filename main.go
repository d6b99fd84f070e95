package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prankitapotbhare/TinyLink/internal/config"
	"github.com/prankitapotbhare/TinyLink/internal/controllers"
	"github.com/prankitapotbhare/TinyLink/internal/database"
	"github.com/prankitapotbhare/TinyLink/internal/logger"
	"github.com/prankitapotbhare/TinyLink/internal/repository"
	"github.com/prankitapotbhare/TinyLink/internal/service"
)

func main() {
	startTime := time.Now()

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// Initialize repository and service
	linkRepo := repository.NewLinkRepository(db)
	linkService := service.NewLinkService(linkRepo)

	// Initialize controllers
	linkController := controllers.NewLinkController(linkService, cfg.BaseURL)
	healthController := controllers.NewHealthController(linkRepo, cfg.Version, startTime)
	qrcodeController := controllers.NewQRCodeController(linkService, cfg.BaseURL)

	router := gin.New()
	router.Use(logger.GinMiddleware())
	router.Use(gin.Recovery())

	// Redirect endpoint
	router.GET("/:code", linkController.Redirect)

	api := router.Group("/api")
	{
		api.GET("/healthz", healthController.Healthz)
		api.GET("/links", linkController.ListLinks)
		api.POST("/links", linkController.CreateLink)
		api.GET("/links/:code", linkController.GetLink)
		api.DELETE("/links/:code", linkController.DeleteLink)
		api.GET("/links/:code/qr", qrcodeController.GenerateQRCode)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

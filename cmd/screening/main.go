package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/cache"
	"github.com/SAP-F-2025/screening-service/internal/config"
	"github.com/SAP-F-2025/screening-service/internal/handlers"
	"github.com/SAP-F-2025/screening-service/internal/imaging"
	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/repositories/memory"
	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/internal/validator"
	"github.com/SAP-F-2025/screening-service/pkg"
)

const maxUploadBytes = 32 << 20

func main() {
	if err := run(); err != nil {
		slog.Error("Screening service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cacheSvc cache.CacheService
	if cfg.RedisURL != "" {
		client, err := pkg.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, advisory cache disabled", "error", err)
		} else {
			defer client.Close()
			cacheSvc = cache.NewRedisCache(client, "screening:", slogger)
		}
	}

	advisor, err := cfg.Advisory.CreateAdvisor(ctx, cacheSvc, slogger)
	if err != nil {
		return err
	}
	if c, ok := advisor.(io.Closer); ok {
		defer c.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var analyzer imaging.Analyzer = imaging.Disabled{}
	if cfg.AnalysisURL != "" {
		analyzer = imaging.NewClient(cfg.AnalysisURL, cfg.AnalysisTimeout)
	}

	screening := services.NewScreeningService(services.ScreeningConfig{
		SessionTTL:      cfg.SessionTTL,
		AdvisoryTimeout: cfg.Advisory.Timeout,
		Location:        cfg.Location(),
		GameOptions:     []memorygame.Option{memorygame.WithDelay(cfg.RevealDelay)},
	}, memory.NewSessionMemory(), advisor, publisher, slogger)
	defer screening.Close()
	go screening.RunJanitor(ctx, cfg.JanitorInterval)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	handlers.NewHandlerManager(
		screening,
		services.NewScanService(analyzer, slogger),
		validator.New(),
		logger,
	).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Screening service listening", "addr", srv.Addr, "environment", cfg.Environment, "advisor", advisor.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Length", "Accept", "Origin", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

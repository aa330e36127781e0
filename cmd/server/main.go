package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tzekovic/OX-Project/internal/api/service"
	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/config"
	"github.com/tzekovic/OX-Project/internal/db"
	"github.com/tzekovic/OX-Project/internal/hub"
	"github.com/tzekovic/OX-Project/internal/logger"
	"github.com/tzekovic/OX-Project/internal/repository"
	"github.com/tzekovic/OX-Project/internal/room"
	"github.com/tzekovic/OX-Project/internal/server"
	"github.com/tzekovic/OX-Project/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		Exporter:       cfg.OtelExporter,
		Endpoint:       cfg.OtelEndpoint,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	logger.Init(os.Stderr, level)
	if cfg.JWTSecret == config.DevJWTSecret {
		slog.Warn("OX_JWT_SECRET is unset, signing room tokens with the development secret")
	}

	// Create repositories
	var (
		gameRepo  repository.GameRepository
		publisher repository.EventPublisher
	)
	if cfg.RedisConnString != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisConnString)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		gameRepo = repository.NewGameRepository(rdb, cfg.RoomTTL)
		publisher = repository.NewEventPublisher(rdb)
		slog.Info("Using redis room store")
	} else {
		gameRepo = repository.NewMemoryGameRepository(cfg.RoomTTL)
		publisher = repository.NopPublisher{}
		slog.Info("REDIS_CONNSTRING is unset, rooms are kept in memory")
	}

	// Create hub
	h := hub.NewHub(gameRepo, publisher,
		hub.WithIdleTTL(cfg.RoomTTL),
		hub.WithRoomOptions(
			room.WithSelector(bot.NewSelector(nil)),
			room.WithThinkDelay(cfg.AIDelay),
		),
	)
	hubDone := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(hubDone)
	}()

	// Create the Gin-based server
	gin.SetMode(gin.ReleaseMode)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	srv := server.NewServer(h, tokens, cfg.WebDir)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	<-hubDone

	slog.Info("Server exiting")
}

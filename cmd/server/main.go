package main

import (
	"context"
	"ctchen222/Hex/internal/api/controller"
	"ctchen222/Hex/internal/api/service"
	"ctchen222/Hex/internal/config"
	"ctchen222/Hex/internal/db"
	"ctchen222/Hex/internal/hub"
	"ctchen222/Hex/internal/logger"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/internal/room"
	"ctchen222/Hex/internal/server"
	"ctchen222/Hex/internal/telemetry"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := flag.String("config", "", "optional env-style config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	if cfg.OtelEnabled {
		shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{Collector: cfg.OtelCollector})
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}
	logger.Init(cfg.LogLevel, cfg.OtelEnabled)
	if logger.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisConnString)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Initialize SQLite DB
	archiveDB, err := db.Connect(ctx, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}
	defer archiveDB.Close()

	// Create repositories
	gameRepo := repository.NewGameRepository(rdb)
	playerRepo := repository.NewPlayerRepository(rdb)
	archiveRepo := repository.NewArchiveRepository(archiveDB)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	// Create hub
	h := hub.NewHub(room.Deps{
		Games:       gameRepo,
		Archive:     archiveRepo,
		Presence:    playerRepo,
		Metrics:     metrics,
		MoveTimeout: cfg.MoveTimeout,
	}, hub.Options{DefaultSize: cfg.DefaultBoardSize, MaxSize: cfg.MaxBoardSize})
	defer h.Close()

	if _, err := h.Restore(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to restore active games", "error", err)
	}
	go h.Run(ctx)

	// Create controllers
	gameController := controller.NewGameController(service.NewGameService(h, archiveRepo))

	// Create the Gin-based server
	srv := server.NewServer(h, gameController)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
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
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

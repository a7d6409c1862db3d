package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/wod-sheets/internal/config"
	"github.com/jwebster45206/wod-sheets/internal/handlers"
	"github.com/jwebster45206/wod-sheets/internal/logger"
	"github.com/jwebster45206/wod-sheets/internal/middleware"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/internal/services/queue"
	"github.com/jwebster45206/wod-sheets/internal/storage"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Service = "api"

	log := logger.Setup(cfg)

	log.Info("Starting WoD Sheets API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"automated_willpower", cfg.AutomatedWillpower)

	store := storage.NewRedisStorage(cfg.RedisAddr(), cfg.DataDir, cfg.SheetTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	queueClient, err := queue.NewClient(cfg.RedisURI(), log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	rollQueue := queue.NewRollQueue(queueClient)
	broadcaster := events.NewBroadcaster(store.Client(), log)

	seed, err := dice.NewSeed()
	if err != nil {
		log.Error("Failed to seed dice roller", "error", err)
		os.Exit(1)
	}
	controller := sheet.NewController(dice.NewRoller(seed), sheet.Options{
		AutomatedWillpower: cfg.AutomatedWillpower,
		RageThresholds:     cfg.RageThresholds,
		SortAbilities:      cfg.SortAbilities,
	})
	processor := worker.NewSheetProcessor(store, controller, broadcaster, log)

	router := handlers.NewRouter(handlers.Deps{
		Storage:     store,
		Processor:   processor,
		Queue:       rollQueue,
		Broadcaster: broadcaster,
		Logger:      log,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(router),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: SSE and websocket connections are long lived
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue client", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

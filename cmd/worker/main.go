package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/wod-sheets/internal/config"
	"github.com/jwebster45206/wod-sheets/internal/logger"
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
	cfg.Service = "worker"

	log := logger.Setup(cfg)

	log.Info("Starting WoD Sheets Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	queueClient, err := queue.NewClient(cfg.RedisURI(), log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	rollQueue := queue.NewRollQueue(queueClient)
	log.Info("Queue service initialized successfully")

	store := storage.NewRedisStorage(cfg.RedisAddr(), cfg.DataDir, cfg.SheetTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()
	log.Info("Storage service initialized successfully")

	// The storage client doubles as the lock and pub/sub connection;
	// blocking pops stay on the queue client.
	redisClient := store.Client()
	broadcaster := events.NewBroadcaster(redisClient, log)

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

	w := worker.New(rollQueue, processor, broadcaster, redisClient, log, cfg.WorkerID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish current request
	time.Sleep(2 * time.Second)

	log.Info("Worker exited")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/internal/worker"
	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// simd runs the simulation daemon: the continuous time advancer plus the
// worker that drains threshold-crossing events.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine simulation daemon",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"tick_interval", cfg.TickInterval,
		"time_scale", cfg.TimeScale)

	// Initialize queue service
	eventQueue, err := queue.NewEventQueue(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create event queue", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := eventQueue.Close(); err != nil {
			log.Error("Error closing event queue", "error", err)
		}
	}()
	log.Info("Queue service initialized successfully")

	// Initialize storage service
	storageService := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storageService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storageService.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()
	log.Info("Storage service initialized successfully")

	// Load definitions and build the needs store
	needsCfg, err := storageService.GetNeedsConfig(storageCtx)
	if err != nil {
		log.Error("Failed to load needs config", "error", err)
		os.Exit(1)
	}
	needsStore, err := npc.NewStore(needsCfg)
	if err != nil {
		log.Error("Failed to construct needs store", "error", err)
		os.Exit(1)
	}

	policy := mood.DefaultPolicy()

	// Continuous time advancement
	advancer := sim.NewAdvancer(needsStore, storageService, eventQueue, policy, cfg.TickInterval, cfg.TimeScale, log)
	advancer.Start(os.Getenv("SIM_ENVIRONMENT"))
	defer advancer.Stop()

	// Event worker, publishing to live subscribers over Pub/Sub
	broadcaster := events.NewBroadcaster(eventQueue.Redis(), log)
	processor := worker.NewEventProcessor(storageService, policy, broadcaster, log).
		WithBroadcaster(broadcaster)
	w := worker.New(eventQueue, processor, log, os.Getenv("WORKER_ID"))

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker stopped with error", "error", err)
		}
	}()

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Simulation daemon is shutting down...")
	w.Stop()
}

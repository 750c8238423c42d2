package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/middleware"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/mood"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Definitions load once, before any service is constructed. A bad
	// config document stops the process here.
	needsCfg, err := store.GetNeedsConfig(storageCtx)
	if err != nil {
		log.Error("Failed to load needs config", "error", err)
		os.Exit(1)
	}
	needsStore, err := npc.NewStore(needsCfg)
	if err != nil {
		log.Error("Failed to construct needs store", "error", err)
		os.Exit(1)
	}

	interactions, err := store.GetInteractions(storageCtx)
	if err != nil {
		log.Error("Failed to load interactions", "error", err)
		os.Exit(1)
	}

	policy := mood.DefaultPolicy()
	processor := interaction.NewProcessor(needsStore, interactions, policy, log)

	eventQueue, err := queue.NewEventQueue(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create event queue", "error", err)
		os.Exit(1)
	}

	advancer := sim.NewAdvancer(needsStore, store, eventQueue, policy, cfg.TickInterval, cfg.TimeScale, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	npcHandler := handlers.NewNPCHandler(store, needsStore, processor, eventQueue, policy, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	simHandler := handlers.NewSimulationHandler(advancer, store, log)
	mux.Handle("/v1/simulation/", simHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	advancer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err := eventQueue.Close(); err != nil {
		log.Error("Error closing event queue", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server stopped")
}

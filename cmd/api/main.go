package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-world/internal/config"
	"github.com/jwebster45206/npc-world/internal/handlers"
	"github.com/jwebster45206/npc-world/internal/logger"
	"github.com/jwebster45206/npc-world/internal/services"
	"github.com/jwebster45206/npc-world/internal/services/events"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC World API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"map_width", cfg.MapWidth,
		"map_height", cfg.MapHeight,
		"map_seed", cfg.MapSeed)

	var rng *rand.Rand
	if cfg.MapSeed != 0 {
		rng = rand.New(rand.NewPCG(cfg.MapSeed, cfg.MapSeed))
	}
	gameMap, err := world.Generate(cfg.MapConfig(), rng)
	if err != nil {
		log.Error("Failed to generate map", "error", err)
		os.Exit(1)
	}
	log.Info("Map generated", "walkable", len(gameMap.WalkablePositions()))

	specs := state.DefaultNPCSpecs()
	if cfg.NPCFile != "" {
		specs, err = state.LoadNPCSpecs(cfg.NPCFile)
		if err != nil {
			log.Error("Failed to load NPC file", "error", err, "path", cfg.NPCFile)
			os.Exit(1)
		}
	}
	roster, err := state.NewRoster(specs, cfg.NPCOptions())
	if err != nil {
		log.Error("Failed to build NPC roster", "error", err)
		os.Exit(1)
	}
	warnUnwalkableSpawns(log, gameMap, roster)
	log.Info("NPCs loaded", "count", roster.Len())

	// Redis is optional; without it events are dropped.
	var (
		redisService *services.RedisService
		pinger       services.Pinger
		publisher    events.Publisher
		subscriber   handlers.Subscriber
	)
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL, log)
		if err != nil {
			log.Error("Invalid Redis configuration", "error", err)
			os.Exit(1)
		}
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := redisService.WaitForConnection(redisCtx); err != nil {
			redisCancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		redisCancel()
		log.Info("Redis connection established successfully")
		pinger = redisService
		publisher = redisService.Client()
		subscriber = redisService.Client()
	} else {
		log.Info("REDIS_URL not set, NPC events disabled")
	}

	handler := handlers.NewRouter(handlers.RouterConfig{
		Map:         gameMap,
		Roster:      roster,
		Broadcaster: events.NewBroadcaster(publisher, log),
		Redis:       pinger,
		Subscriber:  subscriber,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/events streams until the client leaves
		IdleTimeout: 60 * time.Second,
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

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisService != nil {
		if err := redisService.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	log.Info("Server exited")
}

// warnUnwalkableSpawns flags NPCs whose start cell is a wall. They can still
// move to any walkable cell.
func warnUnwalkableSpawns(log *slog.Logger, gameMap *world.Map, roster *state.Roster) {
	for _, npc := range roster.All() {
		if p := npc.Position(); !gameMap.IsWalkable(p) {
			logger.WithNPC(log, npc.ID()).Warn("NPC starts on a non-walkable cell", "x", p.X, "y", p.Y)
		}
	}
}

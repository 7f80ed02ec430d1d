package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/config"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/logging"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/policy"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/session"
	handler "github.com/is0383kk/claude-multi-agent-api-server/internal/transport/http"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/transport/ws"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/worker"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
			os.Exit(1)
		}
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting agent API server",
		"port", cfg.HTTPPort,
		"provider", cfg.Provider,
	)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy, cfg.AllowBypassPermissions)
	if err != nil {
		log.Error("failed to initialize policy engine", "error", err)
		os.Exit(1)
	}

	// Initialize worker
	w, err := worker.New(cfg)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		os.Exit(1)
	}

	// Initialize websocket hub
	hub := ws.NewHub(log)
	go hub.Run()

	// Initialize session manager
	store := session.NewStore()
	manager := session.NewManager(store, w,
		session.WithValidator(policyEngine),
		session.WithPublisher(hub),
		session.WithLogger(log),
		session.WithSessionTimeout(cfg.SessionTimeout),
	)

	// Initialize HTTP server
	h := handler.NewHandler(manager, hub, log, cfg.MaxSessionAge)
	e := handler.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Periodic cleanup of old finished sessions
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				manager.Cleanup(cfg.MaxSessionAge)
			case <-cleanupDone:
				return
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	close(cleanupDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Error("session shutdown incomplete", "error", err)
	}

	log.Info("stopped")
}

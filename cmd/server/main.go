/*
main.go - Application entry point.

STARTUP SEQUENCE:
  1. Load configuration (environment, optional .env)
  2. Open SQLite store (migrates on open)
  3. Optionally seed demo data (-seed)
  4. Configure router and middleware
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run against a file database
  JWT_SECRET=dev-secret DB_PATH=./data/leave.db ./server

  # Run in-memory with demo accounts
  JWT_SECRET=dev-secret DB_PATH=":memory:" ./server -seed
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/store"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	seed := flag.Bool("seed", false, "seed demo accounts on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := api.NewLogger(cfg.App.LogLevel, cfg.App.Env)

	st, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer st.Close()

	if *seed {
		if err := store.SeedDemo(context.Background(), st); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded demo accounts")
	}

	handler := api.NewHandler(st, cfg.JWT.Secret, cfg.JWT.TokenTTL)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine so shutdown signals can be handled.
	go func() {
		logger.Info("server listening", "addr", server.Addr, "db", cfg.Database.Path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the worklog attendance tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize logging
  3. Open the local SQLite store
  4. Create the remote store when GitHub settings are present
  5. Build the tracker and load entries (remote first, local fallback)
  6. Start the retention scheduler
  7. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: worklog.db, env DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the retention scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Local only
  ./server -db="./data/worklog.db"

  # Synced through a GitHub repository
  GITHUB_OWNER=me GITHUB_REPO=worklog-data GITHUB_TOKEN=... ./server

SEE ALSO:
  - config/config.go: All settings
  - api/server.go: Router configuration
  - tracker/tracker.go: Storage modes
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/worklog/api"
	"github.com/warp/worklog/config"
	"github.com/warp/worklog/logging"
	"github.com/warp/worklog/store/github"
	"github.com/warp/worklog/store/sqlite"
	"github.com/warp/worklog/tracker"
)

const appName = "worklog"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logging.Init(appName, cfg.LogLevel)
	log := logging.Logger

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	loc := cfg.Location
	opts := []tracker.Option{
		tracker.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if cfg.RemoteEnabled() {
		remote, err := github.New(cfg.GitHub, github.WithHTTPClient(&http.Client{Timeout: 20 * time.Second}))
		if err != nil {
			log.WithError(err).Fatal("Failed to configure remote storage")
		}
		opts = append(opts, tracker.WithRemote(remote))
	}
	t := tracker.New(store, opts...)

	log.WithField("mode", cfg.Mode()).Info("Loading work records")
	res, err := t.Load(context.Background())
	if err != nil {
		log.WithError(err).Fatal("Failed to load work records")
	}
	if res.Fallback {
		log.WithError(res.Err).Warn("Remote storage unavailable, running on the local copy")
	}
	if res.Dropped > 0 {
		log.WithField("dropped", res.Dropped).Info("Dropped records past retention cutoff")
	}

	scheduler := api.NewRetentionScheduler(t, cfg.RetentionSchedule, loc)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start retention scheduler")
	}

	router := api.NewRouter(api.NewHandler(t), cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on http://localhost:%d", cfg.Port)
		log.Infof("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

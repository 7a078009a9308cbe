/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the DVC Dashboard server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store and seed default settings
  3. Load embedded point charts
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Environment variables (read from .env via godotenv, flags take precedence):
    PORT           HTTP server port (default: 8000)
    DB_PATH        SQLite database path (default: dvc.db)
    CORS_ORIGINS   Comma-separated allowed origins
                   (default: http://localhost:5173)
    BORROWING_LIMIT_PCT
                   Initial borrowing limit ("50" or "100"); only applied
                   when the setting has not been persisted yet

COMMAND-LINE FLAGS:
  -port    HTTP server port
  -db      SQLite database path; use ":memory:" for in-memory

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/dvc.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/dvc-dashboard/api"
	"github.com/warp/dvc-dashboard/chart"
	"github.com/warp/dvc-dashboard/store/sqlite"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env is optional; real environment variables win over file entries.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	defaultPort := 8000
	if p, err := strconv.Atoi(envOr("PORT", "")); err == nil {
		defaultPort = p
	}

	port := flag.Int("port", defaultPort, "HTTP server port")
	dbPath := flag.String("db", envOr("DB_PATH", "dvc.db"), "SQLite database path")
	flag.Parse()

	corsOrigins := strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173"), ",")

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Load embedded point charts
	charts, err := chart.Load()
	if err != nil {
		log.Fatalf("Failed to load point charts: %v", err)
	}

	// Env-provided borrowing limit seeds the setting on first boot only; a
	// value persisted through the API wins afterwards.
	if pct := envOr("BORROWING_LIMIT_PCT", ""); pct == "50" || pct == "100" {
		if _, err := store.GetSetting(context.Background(), "borrowing_limit_pct"); err == sqlite.ErrNotFound {
			if err := store.SetSetting(context.Background(), "borrowing_limit_pct", pct); err != nil {
				log.Fatalf("Failed to apply BORROWING_LIMIT_PCT: %v", err)
			}
		}
	}

	// Initialize handler and seed default settings
	handler := api.NewHandler(store, charts)
	if err := handler.SeedDefaults(context.Background()); err != nil {
		log.Fatalf("Failed to seed default settings: %v", err)
	}

	// Create router
	router := api.NewRouter(handler, corsOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

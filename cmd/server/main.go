// Package main runs the catalog service process:
// - Operations HTTP: /health, /metrics, /status
// - Cache warming (scheduled): recomputes current stats
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vehicle-catalog-lab/internal/app"
	"vehicle-catalog-lab/internal/config"
)

// Server holds the components of the catalog service.
type Server struct {
	// Configuration
	addr         string
	warmInterval time.Duration

	// Components
	app    *app.App
	logger *log.Logger

	// State
	mu          sync.Mutex
	started     time.Time
	lastWarmRun time.Time
	lastWarmErr string
	warmRunning bool

	// Last warmed catalog
	liveVersion   string
	knownVersions int
	vehicleCount  int

	// Stats
	warmRuns int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (config values as defaults)
	addr := flag.String("addr", cfg.MetricsAddr, "HTTP listen address")
	store := flag.String("store", cfg.Store, "Snapshot store: memory, postgres, sqlite or clickhouse")
	useFixtures := flag.Bool("use-fixtures", cfg.UseFixtures, "Load the demo catalog into the store")
	warmInterval := flag.Duration("warm-interval", 10*time.Minute, "Current stats cache warm interval (0 disables)")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg.Store = *store
	cfg.UseFixtures = *useFixtures
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	server := &Server{
		addr:         *addr,
		warmInterval: *warmInterval,
		app:          a,
		logger:       logger,
		started:      time.Now(),
	}

	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Printf("Server error: %v", err)
		a.Close()
		os.Exit(1)
	}

	logger.Println("Shutdown complete")
}

// Run serves HTTP and warms the cache until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		s.logger.Printf("Starting HTTP server on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.warmInterval > 0 {
		go func() {
			if err := s.runWarmScheduler(ctx); err != nil && err != context.Canceled {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Printf("HTTP shutdown error: %v", err)
	}
	return runErr
}

// runWarmScheduler refreshes current stats on schedule.
func (s *Server) runWarmScheduler(ctx context.Context) error {
	s.logger.Printf("Starting cache warm scheduler (interval: %v)...", s.warmInterval)

	// Run immediately on start
	s.warmStats(ctx)

	ticker := time.NewTicker(s.warmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.warmStats(ctx)
		}
	}
}

// warmStats drops cached current stats and recomputes them.
func (s *Server) warmStats(ctx context.Context) {
	s.mu.Lock()
	if s.warmRunning {
		s.mu.Unlock()
		s.logger.Println("Cache warm already running, skipping...")
		return
	}
	s.warmRunning = true
	s.mu.Unlock()

	start := time.Now()
	s.app.Service.InvalidateStats("")
	result, err := s.app.Service.GetStats(ctx, "")

	s.mu.Lock()
	s.warmRunning = false
	s.lastWarmRun = time.Now()
	s.warmRuns++
	if err != nil {
		s.lastWarmErr = err.Error()
	} else {
		s.lastWarmErr = ""
		s.liveVersion = result.LiveVersion
		s.knownVersions = len(result.Versions)
		s.vehicleCount = result.VehicleCount
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Printf("Cache warm failed: %v", err)
		return
	}
	s.logger.Printf("Current stats warmed in %v", time.Since(start))
}

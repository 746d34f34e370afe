package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bot-swatter/internal/bootstrap"
	"bot-swatter/internal/config"
	"bot-swatter/internal/crash"
	"bot-swatter/internal/detector"
	"bot-swatter/internal/handler"
	"bot-swatter/internal/logger"
	"bot-swatter/internal/notifier"
	"bot-swatter/internal/platform"
	"bot-swatter/internal/scheduler"
	"bot-swatter/internal/service"
	"bot-swatter/internal/storage"
	"bot-swatter/internal/tracker"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")

	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Platform.Subreddit == "" {
		log.Fatalf("platform.subreddit is required")
	}

	// Set up logging first
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	// Initialize audit database if enabled
	if cfg.Database.Enabled {
		if err := storage.Initialize(cfg); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		log.Println("Database connection established")
	}
	service.InitRepositories()

	// Durable key-value store
	var store storage.Store
	if cfg.Redis.URL != "" {
		redisStore, err := storage.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisStore
	} else {
		logger.Warningf("No Redis URL configured, falling back to in-memory store; state will not survive restarts")
		store = storage.NewMemStore()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := platform.NewHTTPClient(&cfg.Platform)

	ntf, err := notifier.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}

	sched := scheduler.New()
	trk := tracker.New(store, client, sched, cfg.Platform.Subreddit)
	det := detector.New(cfg, client, store, trk).WithAudit(service.RecordAction)
	if ntf != nil {
		det.WithNotifier(ntf)
	}

	// Startup reconciliation: re-arm sweeps, seed unban data, startup notice
	bootstrap.Install(ctx, cfg, store, sched, client, det, trk, ntf)

	// Start the comment / mod-log polling loop
	poller := handler.NewPoller(cfg, client, det, trk)
	poller.Start(ctx)

	// Metrics endpoint, if configured
	if cfg.Metrics.ListenAddr != "" {
		crash.SafeGoroutine("metrics", func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Infof("Serving metrics on %s", cfg.Metrics.ListenAddr)
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				logger.Errorf("Metrics server error: %v", err)
			}
		})
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down...", sig)

	cancel()
	sched.Stop()

	log.Println("Server gracefully stopped")
}

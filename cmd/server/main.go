package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtitle-collector/internal/app"
	"subtitle-collector/internal/config"
	"subtitle-collector/internal/handlers"
	"subtitle-collector/internal/middleware"
	"subtitle-collector/internal/router"
	"subtitle-collector/internal/services"
	"subtitle-collector/internal/websocket"
	"subtitle-collector/internal/worker"
)

func main() {
	log.Println("🚀 Starting Subtitle Collector...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Store, Archive and Redis ────
	ctx := context.Background()
	components, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("✗ Backend initialization failed: %v", err)
	}
	defer components.Close()

	// ──── Step 3: Start WebSocket Hub ────
	var wsHub *websocket.Hub
	var observer services.Observer
	if components.Redis != nil {
		wsHub = websocket.NewHub(components.Redis.PubSub)
		observer = services.NewRedisPublisher(components.Redis.Locks)
	} else {
		wsHub = websocket.NewHub(nil)
		observer = wsHub
	}
	log.Println("✓ WebSocket hub started")

	// ──── Step 4: Build Pipeline ────
	pipeline, err := components.NewPipeline(observer)
	if err != nil {
		log.Fatalf("✗ Pipeline initialization failed: %v", err)
	}
	log.Printf("✓ Pipeline ready (metadata: %s, staging: %s)", cfg.MetadataSource, cfg.StagingDir)

	// ──── Step 5: Start Background Workers ────
	var workerPool *worker.Pool
	if components.Redis != nil {
		workerPool = worker.NewPool(components.Redis.Locks, pipeline, 2)
		workerPool.Start()
		log.Println("✓ Worker pool started (2 goroutines)")
	} else {
		log.Println("  Background submissions disabled (no REDIS_URL)")
	}

	// ──── Initialize Handlers ────
	var submissionHandler *handlers.SubmissionHandler
	if workerPool != nil {
		submissionHandler = handlers.NewSubmissionHandler(pipeline, workerPool)
	} else {
		submissionHandler = handlers.NewSubmissionHandler(pipeline, nil)
	}
	subtitleHandler := handlers.NewSubtitleHandler(components.Store)
	searchHandler := handlers.NewSearchHandler(components.YTDLP)

	// ──── Step 6: Start HTTP Server ────
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
	r := router.New(
		submissionHandler,
		subtitleHandler,
		searchHandler,
		wsHub,
		cfg.FrontendURL,
		submitLimiter,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.ToolTimeout + 30*time.Second, // a submission runs the tool twice
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalf("✗ Failed to listen on %s: %v", server.Addr, err)
	}

	log.Printf("✓ Subtitle Collector ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	err = serve(server, listener, sigChan, 30*time.Second, func() {
		if workerPool != nil {
			workerPool.Stop()
		}
		submitLimiter.Stop()
	})
	if err != nil {
		components.Close()
		log.Fatalf("Server error: %v", err)
	}
	log.Println("✓ Shutdown complete")
}

// serve runs server on ln until a signal arrives, then drains in-flight
// requests before running cleanup. It returns only once both are done.
func serve(server *http.Server, ln net.Listener, signals <-chan os.Signal, timeout time.Duration, cleanup ...func()) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-signals:
	}

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	shutdownErr := server.Shutdown(ctx)

	for _, fn := range cleanup {
		fn()
	}

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}

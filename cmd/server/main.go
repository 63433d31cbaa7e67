package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brunobiangulo/graphnav"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := graphnav.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("GRAPHNAV_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("GRAPHNAV_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GRAPHNAV_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("GRAPHNAV_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("GRAPHNAV_PREFIX"); v != "" {
		cfg.Prefix = v
	}

	apiKey := os.Getenv("GRAPHNAV_API_KEY")
	corsOrigins := os.Getenv("GRAPHNAV_CORS_ORIGINS")

	nav, err := graphnav.New(cfg)
	if err != nil {
		slog.Error("creating navigator", "error", err)
		os.Exit(1)
	}
	defer nav.Close()

	h := newHandler(nav)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ingest", h.handleIngest)
	mux.HandleFunc("POST /resolve", h.handleResolve)
	mux.HandleFunc("POST /connections", h.handleConnections)
	mux.HandleFunc("POST /query", h.handleQuery)
	mux.HandleFunc("GET /describe", h.handleDescribe)
	mux.HandleFunc("GET /triples", h.handleTriples)
	mux.HandleFunc("GET /resources", h.handleResources)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /export", h.handleExport)
	mux.HandleFunc("POST /load", h.handleLoad)
	mux.HandleFunc("POST /clear", h.handleClear)
	mux.HandleFunc("GET /reports/customer-status", h.handleCustomerStatus)
	mux.HandleFunc("GET /reports/similar-requests", h.handleSimilarRequests)
	mux.HandleFunc("GET /reports/high-priority", h.handleHighPriority)
	mux.HandleFunc("GET /reports/module-risk", h.handleModuleRisk)
	mux.HandleFunc("GET /reports/severity-by-domain", h.handleSeverityByDomain)
	mux.HandleFunc("GET /reports/product-performance", h.handleProductPerformance)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // exports of a large graph can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/technewsbot/technews/internal/app"
	"github.com/technewsbot/technews/internal/config"
	"github.com/technewsbot/technews/internal/logger"
	"github.com/technewsbot/technews/internal/metrics"
)

func main() {
	logger.Init()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ok := true
	switch mode(os.Args[1:]) {
	case "health":
		ok = a.HealthCheck()
	case "quality-report":
		ok = a.QualityReport(ctx)
	default:
		ok = a.Run(ctx)
	}

	if !ok {
		os.Exit(1)
	}
}

func mode(args []string) string {
	for _, arg := range args {
		switch arg {
		case "--health":
			return "health"
		case "--quality-report":
			return "quality-report"
		}
	}
	return "run"
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}
		if !metrics.Global.GetStats()["is_healthy"].(bool) {
			w.WriteHeader(http.StatusServiceUnavailable)
			status["status"] = "degraded"
		}
		json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics.Global.GetStats())
	})

	slog.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("monitoring server stopped", "error", err)
	}
}

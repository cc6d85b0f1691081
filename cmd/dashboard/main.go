package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LaborPulse/internal/config"
	"LaborPulse/internal/dashboard"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/recorder"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] LaborPulse dashboard starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Run history is optional; the page just omits it
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, run history disabled: %v", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	h := dashboard.NewHandler(cfg.Dataset.Path, cfg.Series, cfg.Dashboard.DefaultMonths, rec, metrics.New(""))
	e, err := dashboard.NewServer(h)
	if err != nil {
		log.Fatalf("[FATAL] init dashboard: %v", err)
	}

	go func() {
		if err := e.Start(cfg.Dashboard.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] dashboard server: %v", err)
		}
	}()
	log.Printf("[INFO] dashboard listening on %s (dataset %s)", cfg.Dashboard.Addr, cfg.Dataset.Path)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] dashboard shutdown: %v", err)
	}
	log.Println("[INFO] LaborPulse dashboard stopped")
}

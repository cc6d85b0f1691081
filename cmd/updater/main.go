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

	"github.com/labstack/echo/v4"

	"LaborPulse/internal/config"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/scheduler"
	"LaborPulse/internal/updater"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] LaborPulse updater starting...")

	// Load config
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

	m := metrics.New("")
	u, rec, err := updater.Setup(cfg, m)
	if err != nil {
		log.Fatalf("[FATAL] init updater: %v", err)
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if !cfg.Schedule.Enabled {
		_, err := u.Run(ctx)
		stop()
		rec.Close()
		if err != nil {
			log.Fatalf("[FATAL] update: %v", err)
		}
		log.Println("[INFO] LaborPulse updater finished")
		return
	}
	defer rec.Close()
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := echo.New()
		srv.HideBanner = true
		srv.GET("/metrics", echo.WrapHandler(m.Handler()))
		go func() {
			if err := srv.Start(cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Printf("[INFO] metrics listening on %s", cfg.Metrics.Addr)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, u)
	if err := sched.Register(cfg.Schedule.MonthlyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing update now")
		go sched.RunNow()
	}

	log.Printf("[INFO] LaborPulse updater is running (%s). Press Ctrl+C to stop.", cfg.Schedule.MonthlyCron)

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LaborPulse/internal/config"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/updater"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	start := flag.Int("start", cfg.Dataset.SeedStartYear, "first year to fetch")
	end := flag.Int("end", time.Now().Year(), "last year to fetch")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if *start > *end {
		log.Fatalf("[FATAL] start year %d is after end year %d", *start, *end)
	}
	log.Printf("[INFO] seeding %s with %d-%d", cfg.Dataset.Path, *start, *end)

	u, rec, err := updater.Setup(cfg, metrics.New(""))
	if err != nil {
		log.Fatalf("[FATAL] init updater: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	run, err := u.Seed(ctx, *start, *end)
	stop()
	rec.Close()
	if err != nil {
		log.Fatalf("[FATAL] seed: %v", err)
	}
	log.Printf("[INFO] seeded %d observations", run.Appended)
}

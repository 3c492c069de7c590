package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-slideshow/internal/enrich"
	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/startup"
	"photo-slideshow/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file")
	batchSize := flag.Int("batch-size", 10, "photos to process per index file per pass")
	delayMS := flag.Int("delay", 2000, "milliseconds between geocoding calls")
	continuous := flag.Bool("continuous", false, "keep running, one pass per interval")
	intervalS := flag.Int("interval", 60, "seconds between passes in continuous mode")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	cfg, err := startup.LoadConfig(*configPath)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	st, err := store.New(cfg.IndexDir)
	if err != nil {
		startup.LogFatal("Failed to open index store: %v", err)
	}

	geocoder := geo.NewGeocoder(cfg.NominatimEndpoint, cfg.NominatimUserAgent)
	processor := enrich.NewProcessor(st, geocoder, *batchSize, time.Duration(*delayMS)*time.Millisecond)
	runner := enrich.NewRunner(st, processor, "geoprocessor")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*continuous {
		runPass(ctx, runner)
		return
	}

	logging.Info("Running continuously, one pass every %ds", *intervalS)
	ticker := time.NewTicker(time.Duration(*intervalS) * time.Second)
	defer ticker.Stop()

	runPass(ctx, runner)
	for {
		select {
		case <-ctx.Done():
			logging.Info("Shutting down")
			return
		case <-ticker.C:
			runPass(ctx, runner)
		}
	}
}

func runPass(ctx context.Context, runner *enrich.Runner) {
	stats, ran := runner.RunPass(ctx)
	if !ran {
		return
	}
	logging.Info("Pass complete: %d processed, %d already geocoded, %d without GPS, %d skipped, %d errors",
		stats.Processed, stats.AlreadyGeocoded, stats.NoGPS, stats.Skipped, stats.Errors)
}

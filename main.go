package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photo-slideshow/internal/enrich"
	"photo-slideshow/internal/geo"
	"photo-slideshow/internal/handlers"
	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/middleware"
	"photo-slideshow/internal/scanner"
	"photo-slideshow/internal/session"
	"photo-slideshow/internal/slideshow"
	"photo-slideshow/internal/startup"
	"photo-slideshow/internal/store"
)

func main() {
	startTime := time.Now()

	configPath := flag.String("config", "", "path to the JSON config file")
	flag.Parse()

	cfg, err := startup.LoadConfig(*configPath)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Current config behind an atomic pointer so reloads take effect on
	// the next request without restarting.
	var current atomic.Pointer[startup.Config]
	current.Store(cfg)
	getConfig := func() *startup.Config { return current.Load() }

	st, err := store.New(cfg.IndexDir)
	if err != nil {
		startup.LogFatal("Failed to initialize index store: %v", err)
	}
	if _, err := st.SyncPlaylistIndex(cfg.PlaylistRoots()); err != nil {
		startup.LogFatal("Failed to sync playlist index: %v", err)
	}

	sessions, err := session.New(context.Background(), cfg.IndexDir)
	if err != nil {
		startup.LogFatal("Failed to initialize session store: %v", err)
	}
	defer sessions.Close()

	// Clean up expired sessions periodically
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := sessions.Sweep(context.Background()); err != nil {
				logging.Error("Session sweep: %v", err)
			}
		}
	}()

	sc := scanner.New(cfg.PhotoExt, cfg.ExcludeText)
	geocoder := geo.NewGeocoder(cfg.NominatimEndpoint, cfg.NominatimUserAgent)
	processor := enrich.NewProcessor(st, geocoder, cfg.GeocodeBatchSize, cfg.GeocodeDelay)
	trigger := enrich.NewTrigger(st, processor)

	orch := slideshow.New(getConfig, st, sc, trigger)
	h := handlers.New(getConfig, st, sessions, orch, trigger)

	// Reload config on file edits; sessions notice the new mod time and
	// restart their selection cycle.
	watcher, err := startup.WatchConfig(cfg.ConfigPath, func() {
		reloaded, err := startup.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Config reload failed, keeping previous config: %v", err)
			return
		}
		current.Store(reloaded)
		if _, err := st.SyncPlaylistIndex(reloaded.PlaylistRoots()); err != nil {
			logging.Error("Playlist sync after reload: %v", err)
		}
	})
	if err != nil {
		logging.Warn("Config watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	router := setupRouter(h)
	handler := middleware.Logger(router)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv)

	logging.Info("Server listening on %s (started in %s)", cfg.ListenAddr, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/next", h.NextPhoto).Methods("GET")
	api.HandleFunc("/image", h.Image).Methods("GET")
	api.HandleFunc("/geostatus", h.GeoStatus).Methods("GET")
	api.HandleFunc("/enrich", h.TriggerEnrichment).Methods("POST")

	return r
}

func handleShutdown(srv *http.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logging.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error: %v", err)
	}
}

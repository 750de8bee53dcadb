package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streetlight-map/internal/client"
	"streetlight-map/internal/config"
	"streetlight-map/internal/database"
	"streetlight-map/internal/logger"
	"streetlight-map/internal/mapview"
	"streetlight-map/internal/metrics"
	"streetlight-map/internal/routes"
	"streetlight-map/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	metrics.Init()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, db); err != nil {
		cancelSchema()
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}
	cancelSchema()

	store := services.NewStreetlightService(db)

	// Views load from the local store unless a remote backend is configured.
	var source mapview.Source = store
	if cfg.StreetlightAPIURL != "" {
		source = client.New(cfg.StreetlightAPIURL, cfg.StreetlightAPITimeout)
		logr.Info("views use remote streetlight backend", zap.String("url", cfg.StreetlightAPIURL))
	}

	viewLogr := logr.Component("mapview")
	views := mapview.NewRegistry(func() *mapview.Controller {
		return mapview.NewController(source, viewLogr, mapview.Options{
			PageSize:      cfg.PageSize,
			DefaultCenter: mapview.LatLng{Lat: cfg.DefaultCenterLat, Lng: cfg.DefaultCenterLng},
			FetchTimeout:  cfg.StreetlightAPITimeout,
		})
	}, cfg.ViewTTL, viewLogr)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go views.Run(sweepCtx, time.Minute)

	r := routes.NewRouter(store, views, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.StreetlightAPITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DioGolang/GoTrack/configs"
	"github.com/DioGolang/GoTrack/internal/infra/bootstrap"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/otel"
)

func main() {
	cfg, err := configs.LoadConfig(".")
	if err != nil {
		panic(err)
	}
	log := logger.NewLogger(cfg.ServiceName, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitProvider(ctx, otel.ProviderConfig{
		ServiceName:   cfg.ServiceName,
		Version:       bootstrap.Version,
		Environment:   cfg.Environment,
		CollectorAddr: cfg.OTelCollectorAddr,
		SampleRatio:   1,
	})
	if err != nil {
		log.Error(ctx, "Failed to start tracer", logger.WithError(err))
		os.Exit(1)
	}
	defer shutdownTracer()

	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to build dependencies", logger.WithError(err))
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warn(context.Background(), "Error while closing dependencies", logger.WithError(err))
		}
	}()

	router, err := container.HTTPHandler()
	if err != nil {
		log.Error(ctx, "Failed to build router", logger.WithError(err))
		return
	}

	evictor := container.EvictionScheduler()
	if err := evictor.Start(ctx); err != nil {
		log.Error(ctx, "Failed to start eviction scheduler", logger.WithError(err))
		return
	}
	defer evictor.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.WebServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(ctx, "HTTP server running", logger.String("port", cfg.WebServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.WithError(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Graceful shutdown failed", logger.WithError(err))
	}
}

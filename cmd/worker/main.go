package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

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
	log := logger.NewLogger(cfg.ServiceName+"-worker", cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitProvider(ctx, otel.ProviderConfig{
		ServiceName:   cfg.ServiceName + "-worker",
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
	defer container.Close()

	consumer, err := container.LocationConsumer()
	if err != nil {
		log.Error(ctx, "Worker cannot start", logger.WithError(err))
		return
	}

	log.Info(ctx, "Worker started", logger.String("queue", cfg.AMQPQueue))
	if err := consumer.Start(ctx, cfg.AMQPQueue); err != nil {
		log.Error(ctx, "Consumer stopped", logger.WithError(err))
		return
	}
	log.Info(context.Background(), "Worker stopped")
}

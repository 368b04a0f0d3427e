package main

import (
	"context"
	"net"
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
	log := logger.NewLogger(cfg.ServiceName+"-grpc", cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitProvider(ctx, otel.ProviderConfig{
		ServiceName:   cfg.ServiceName + "-grpc",
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

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Error(ctx, "Failed to listen", logger.WithError(err))
		return
	}
	grpcServer := container.GRPCServer()

	go func() {
		log.Info(ctx, "gRPC server running", logger.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error(ctx, "gRPC server failed", logger.WithError(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "Shutting down gRPC server")

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(15 * time.Second):
		grpcServer.Stop()
	}
}

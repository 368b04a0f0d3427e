package service

import (
	"context"
	"path"
	"time"

	"github.com/DioGolang/GoTrack/pkg/logger"
	"github.com/DioGolang/GoTrack/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsInterceptor records the latency and status code of every unary call.
func MetricsInterceptor(m metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		service, method := path.Split(info.FullMethod)
		m.ObserveGRPCRequestDuration(path.Base(service), method, status.Code(err).String(), time.Since(start).Seconds())
		return resp, err
	}
}

func LoggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info(ctx, "grpc request processed",
			logger.String("method", info.FullMethod),
			logger.String("code", status.Code(err).String()),
			logger.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}

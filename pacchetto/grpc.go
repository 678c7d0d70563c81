package pacchetto

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func CreateGRPCClient(ctx context.Context, cfg GRPCClientSettings) (*grpc.ClientConn, error) {
	options := make([]grpc.DialOption, 0)
	options = append(options, grpc.WithStatsHandler(otelgrpc.NewClientHandler()))

	retryOpts := []retry.CallOption{
		retry.WithMax(cfg.Retries),
		retry.WithCodes(codes.Unavailable, codes.ResourceExhausted),
		retry.WithBackoff(retry.BackoffExponential(time.Duration(cfg.ExponentialBackoffBaseInMilliseconds) * time.Millisecond)),
	}

	options = append(options, grpc.WithUnaryInterceptor(retry.UnaryClientInterceptor(retryOpts...)))
	options = append(options, grpc.WithStreamInterceptor(retry.StreamClientInterceptor(retryOpts...)))
	options = append(options, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.NewClient(cfg.Address, options...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create grpc client", slog.Any("err", err))
		return nil, err
	}

	return conn, nil
}

// CreateGRPCServer builds an instrumented server with the standard health
// service registered. The returned health server starts as SERVING.
func CreateGRPCServer(cfg GRPCServerSettings) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	healthcheck := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthcheck)

	if cfg.EnableReflection {
		reflection.Register(srv)
	}

	return srv, healthcheck
}

// WatchServingStatus toggles the health status every interval according to
// probe until ctx is done.
func WatchServingStatus(ctx context.Context, healthcheck *health.Server, interval time.Duration, probe func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status := healthpb.HealthCheckResponse_SERVING
		if err := probe(ctx); err != nil {
			slog.WarnContext(ctx, "dependency probe failed", slog.Any("err", err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		healthcheck.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			healthcheck.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// CheckGRPCHealth asks the remote health service for the overall status.
func CheckGRPCHealth(ctx context.Context, conn grpc.ClientConnInterface) error {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("remote service is %s", resp.GetStatus())
	}
	return nil
}

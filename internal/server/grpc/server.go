// Package grpc serves the standard grpc.health.v1 service so orchestrators
// can probe the CDN without going through HTTP.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the named service reported next to the overall ("") status.
const ServiceName = "cdn"

const defaultProbeInterval = 10 * time.Second

type GRPCServer struct {
	address       string
	health        *services.HealthService
	logger        logging.Logger
	probeInterval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, hs *services.HealthService) *GRPCServer {
	return &GRPCServer{
		address:       a,
		health:        hs,
		logger:        l.With("module", "grpc_server"),
		probeInterval: defaultProbeInterval,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	s.probe(ctx, hs)

	go s.watch(ctx, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}

func (s *GRPCServer) watch(ctx context.Context, hs *health.Server) {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx, hs)
		}
	}
}

// probe runs the health checks once and publishes the result.
func (s *GRPCServer) probe(ctx context.Context, hs *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	report := s.health.Check(ctx)
	if !report.Healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "health probe failed", "components", report.Components)
	}

	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
}

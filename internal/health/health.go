// Package health serves grpc.health.v1.Health, reporting SERVING while the database answers pings.
package health

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// ServiceName is the service name reported alongside the overall ("") status.
const ServiceName = "gw-blog"

// Pinger checks the database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is a gRPC server exposing only the health service.
type Server struct {
	grpc     *grpc.Server
	health   *grpchealth.Server
	db       Pinger
	interval time.Duration
}

// NewServer creates a health server that re-checks db every interval.
func NewServer(db Pinger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	srv := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{
		grpc:     srv,
		health:   hs,
		db:       db,
		interval: interval,
	}
}

// Check pings the database once and publishes the result.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(ctx); err != nil {
		logger.Log.Errorw("database ping failed", "err", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch re-checks the database until ctx is done.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve accepts connections on lis until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	logger.Log.Infow("starting gRPC health server", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Shutdown stops the server gracefully, forcing it down if ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() { s.grpc.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}

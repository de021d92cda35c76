package handlers

import (
	"context"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer implements the gRPC health service on top of a database ping.
// Only the overall service ("") is known.
type HealthServer struct {
	healthpb.UnimplementedHealthServer

	store Pinger
	log   *zap.Logger
}

// NewHealthServer creates a new HealthServer
func NewHealthServer(store Pinger, log *zap.Logger) *HealthServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthServer{store: store, log: log}
}

// Check reports SERVING while the database answers pings
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := s.store.HealthCheck(ctx); err != nil {
		s.log.Warn("health check failed", zap.String("service", req.GetService()), zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

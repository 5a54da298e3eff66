package healthapi

import (
	grpctr "github.com/longrunio/lro/internal/transport/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func NewRegistration() grpctr.ServiceRegistration {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("google.longrunning.Operations", grpc_health_v1.HealthCheckResponse_SERVING)

	return func(s *grpc.Server) {
		grpc_health_v1.RegisterHealthServer(s, healthServer)
	}
}

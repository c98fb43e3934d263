package utilities

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterHealthServer registers the gRPC health check service. The overall
// status starts as NOT_SERVING; callers flip it once their dependencies are up.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return healthServer
}

// SetServing marks the overall service and the named services as SERVING.
func SetServing(healthServer *health.Server, services ...string) {
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	for _, s := range services {
		healthServer.SetServingStatus(s, grpc_health_v1.HealthCheckResponse_SERVING)
	}
}

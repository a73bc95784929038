package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"quickfy/backend/internal/telemetry"
)

// NewGRPCServer returns a gRPC server exposing the standard health service, instrumented with OTel.
// Requests other than health checks are reported to emitter when it is non-nil.
// The returned health server is driven by health.Checker.Watch.
func NewGRPCServer(emitter telemetry.EventEmitter) (*grpc.Server, *grpchealth.Server) {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoverUnary(),
			TelemetryUnary(emitter, map[string]bool{healthpb.Health_Check_FullMethodName: true}),
		),
	)
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return s, hs
}

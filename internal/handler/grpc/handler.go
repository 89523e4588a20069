// Package grpc implements the gRPC side of the peer API: the standard
// grpc.health.v1 service, keyed by discovery key.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
)

// Handler is the root gRPC transport handler.
//
// Peers probe it with the discovery key of a collection as the service name.
// The key answers SERVING once the collection is served by this node and
// NOT_SERVING after [Handler.Shutdown]. Unknown keys answer NotFound.
type Handler struct {
	// services provides access to the application services.
	services *service.Services

	health *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}
}

// Register attaches the health service to server.
func (h *Handler) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h.health)
}

// Serve marks the discovery key of collection as SERVING.
func (h *Handler) Serve(collection service.KeyCollection) {
	discoveryKey := collection.DiscoveryKey()
	h.health.SetServingStatus(discoveryKey, healthpb.HealthCheckResponse_SERVING)
	h.logger.Debug().Str("discovery_key", discoveryKey).Msg("health status set to SERVING")
}

// Shutdown switches every known service to NOT_SERVING. Later calls to
// [Handler.Serve] are ignored by the health server.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
	h.logger.Debug().Msg("health status set to NOT_SERVING")
}

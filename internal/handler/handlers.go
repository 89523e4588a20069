package handler

import (
	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/handler/grpc"
	"github.com/MKhiriev/key-collection/internal/handler/http"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler

	services *service.Services
}

func NewHandlers(services *service.Services, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{services: services}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, logger)
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}

// Serve announces an opened collection on every enabled transport: its
// snapshot becomes downloadable and its discovery key answers health probes.
func (h *Handlers) Serve(collection service.KeyCollection) {
	h.services.PeerService.Serve(collection)
	if h.GRPC != nil {
		h.GRPC.Serve(collection)
	}
}

package server

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/handler"
	"github.com/MKhiriev/key-collection/internal/logger"
)

type server struct {
	transports      []transport
	started         []transport
	shutdownTimeout time.Duration

	shutdownOnce sync.Once
	logger       *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
	if servers.shutdownTimeout <= 0 {
		servers.shutdownTimeout = config.DefaultShutdownTimeout
	}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		servers.transports = append(servers.transports, newHTTPServer(handlers.HTTP.Init(), cfg, logger))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		servers.transports = append(servers.transports, newGRPCServer(handlers.GRPC, cfg, logger))
	}

	if len(servers.transports) == 0 {
		return nil, errNoServersAreCreated
	}

	return servers, nil
}

func (s *server) Start() error {
	for _, t := range s.transports {
		if err := t.listen(); err != nil {
			s.Shutdown()
			return err
		}
		s.started = append(s.started, t)

		s.logger.Info().Msgf("Launching %s server", t.name())
		go t.serve()
	}
	return nil
}

func (s *server) Shutdown() {
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		// stop in reverse start order
		for i := len(s.started) - 1; i >= 0; i-- {
			s.logger.Info().Msgf("%s server Shutdown", s.started[i].name())
			s.started[i].shutdown(ctx)
		}
	})
}

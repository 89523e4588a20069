package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
)

func TestNewHandlers(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Server
		wantHTTP bool
		wantGRPC bool
		wantErr  error
	}{
		{name: "peer api and health", cfg: config.Server{HTTPAddress: ":7420", GRPCAddress: ":7421"}, wantHTTP: true, wantGRPC: true},
		{name: "peer api only", cfg: config.Server{HTTPAddress: ":7420"}, wantHTTP: true},
		{name: "health only", cfg: config.Server{GRPCAddress: ":7421"}, wantGRPC: true},
		{name: "nothing to serve", cfg: config.Server{}, wantErr: errNoHandlersAreCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// handlers only keep the services pointer at construction time
			h, err := NewHandlers(nil, tt.cfg, logger.Nop())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHTTP, h.HTTP != nil)
			assert.Equal(t, tt.wantGRPC, h.GRPC != nil)
		})
	}
}

// ── Serve ──

// readyCollection is an opened collection as seen by the peer service.
type readyCollection struct {
	service.KeyCollection
	discoveryKey string
}

func (c readyCollection) DiscoveryKey() string { return c.discoveryKey }
func (c readyCollection) Ready() bool          { return true }

func TestHandlers_Serve(t *testing.T) {
	for _, cfg := range []config.Server{
		{HTTPAddress: ":7420", GRPCAddress: ":7421"},
		{HTTPAddress: ":7420"},
	} {
		t.Run(cfg.HTTPAddress+"|"+cfg.GRPCAddress, func(t *testing.T) {
			peers := service.NewPeerService("node", cfg.GRPCAddress, logger.Nop())
			h, err := NewHandlers(&service.Services{PeerService: peers}, cfg, logger.Nop())
			require.NoError(t, err)

			h.Serve(readyCollection{discoveryKey: "disc"})

			assert.Equal(t, []string{"disc"}, peers.Info(context.Background()).Topics)
		})
	}
}

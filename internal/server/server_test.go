package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/handler"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/models"
)

// ── Helpers ──

type readyCollection struct {
	service.KeyCollection
	discoveryKey string
}

func (c readyCollection) DiscoveryKey() string { return c.discoveryKey }
func (c readyCollection) Ready() bool          { return true }

func newTestHandlers(t *testing.T, cfg config.Server) *handler.Handlers {
	t.Helper()

	appInfo, err := service.NewAppInfoService(models.NewAppBuildInfo("v9.9.9", "", ""), logger.Nop())
	require.NoError(t, err)

	services := &service.Services{
		AppInfoService: appInfo,
		PeerService:    service.NewPeerService("node", cfg.GRPCAddress, logger.Nop()),
	}

	handlers, err := handler.NewHandlers(services, cfg, logger.Nop())
	require.NoError(t, err)
	return handlers
}

func loopbackConfig() config.Server {
	return config.Server{
		HTTPAddress:     "127.0.0.1:0",
		GRPCAddress:     "127.0.0.1:0",
		ShutdownTimeout: 2 * time.Second,
	}
}

func listenerAddr(t *testing.T, s Server, name string) string {
	t.Helper()

	for _, tr := range s.(*server).started {
		if tr.name() != name {
			continue
		}
		switch v := tr.(type) {
		case *httpServer:
			return v.listener.Addr().String()
		case *grpcServer:
			return v.gRPCNetListener.Addr().String()
		}
	}
	t.Fatalf("transport %s not started", name)
	return ""
}

// ── NewServer ──

func TestNewServer_NoTransports(t *testing.T) {
	s, err := NewServer(&handler.Handlers{}, config.Server{}, logger.Nop())

	require.ErrorIs(t, err, errNoServersAreCreated)
	assert.Nil(t, s)
}

func TestNewServer_BothTransports(t *testing.T) {
	cfg := loopbackConfig()

	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())

	require.NoError(t, err)
	assert.Len(t, s.(*server).transports, 2)
}

func TestNewServer_DefaultShutdownTimeout(t *testing.T) {
	cfg := loopbackConfig()
	cfg.ShutdownTimeout = 0

	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())

	require.NoError(t, err)
	assert.Equal(t, config.DefaultShutdownTimeout, s.(*server).shutdownTimeout)
}

// ── Start / Shutdown ──

func TestServer_ServesHTTPAndHealth(t *testing.T) {
	cfg := loopbackConfig()
	handlers := newTestHandlers(t, cfg)

	s, err := NewServer(handlers, cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Shutdown)

	handlers.Serve(readyCollection{discoveryKey: "disc"})

	resp, err := http.Get("http://" + listenerAddr(t, s, "HTTP") + "/api/version")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "v9.9.9", string(body))

	conn, err := grpc.NewClient(listenerAddr(t, s, "gRPC"), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	check, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "disc"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check.GetStatus())
}

func TestServer_StartBindError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := loopbackConfig()
	cfg.GRPCAddress = busy.Addr().String()

	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)

	err = s.Start()
	require.ErrorIs(t, err, errListening)
}

func TestServer_ShutdownIsIdempotent(t *testing.T) {
	cfg := loopbackConfig()
	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Start())

	assert.NotPanics(t, func() {
		s.Shutdown()
		s.Shutdown()
	})
}

package adapter

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Probe implements [PeerAdapter]. Client connections are created lazily and
// reused for subsequent probes of the same address.
func (p *peerAdapter) Probe(ctx context.Context, grpcAddr, service string) error {
	conn, err := p.conn(grpcAddr)
	if err != nil {
		return err
	}

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", ErrPeerNotServing, service)
		}
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s is %s", ErrPeerNotServing, service, resp.GetStatus())
	}

	return nil
}

func (p *peerAdapter) conn(grpcAddr string) (*grpc.ClientConn, error) {
	if grpcAddr == "" {
		return nil, fmt.Errorf("%w: empty grpc address", ErrInvalidAddress)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[grpcAddr]; ok {
		return conn, nil
	}

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	p.conns[grpcAddr] = conn

	return conn, nil
}

// Close implements [PeerAdapter].
func (p *peerAdapter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for addr, conn := range p.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", addr, err))
		}
		delete(p.conns, addr)
	}

	return errors.Join(errs...)
}

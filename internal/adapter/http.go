package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/utils"
	"github.com/MKhiriev/key-collection/models"
	"google.golang.org/grpc"
)

const (
	peerInfoPath = "/api/peer/info"
	snapshotPath = "/api/collections/%s/snapshot"
)

type peerAdapter struct {
	client *utils.HTTPClient

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn

	logger *logger.Logger
}

// NewPeerAdapter constructs the HTTP + gRPC implementation of [PeerAdapter].
// Every outbound request is bounded by adapterCfg.RequestTimeout.
func NewPeerAdapter(adapterCfg config.Adapter, logger *logger.Logger) PeerAdapter {
	client := utils.NewHTTPClient(adapterCfg.RequestTimeout)
	client.SetHeader("Accept", "application/json")

	return &peerAdapter{
		client: client,
		conns:  make(map[string]*grpc.ClientConn),
		logger: logger,
	}
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: address must include host and scheme", ErrInvalidAddress)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Info implements [PeerAdapter]. It GETs /api/peer/info from the peer.
func (p *peerAdapter) Info(ctx context.Context, httpAddr string) (models.PeerInfo, error) {
	baseURL, err := normalizeBaseURL(httpAddr)
	if err != nil {
		return models.PeerInfo{}, err
	}

	var info models.PeerInfo
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&info).
		Get(baseURL + peerInfoPath)
	if err != nil {
		return models.PeerInfo{}, fmt.Errorf("peer info request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PeerInfo{}, err
	}

	return info, nil
}

// FetchSnapshot implements [PeerAdapter]. It GETs
// /api/collections/{discoveryKey}/snapshot from the peer.
func (p *peerAdapter) FetchSnapshot(ctx context.Context, httpAddr, discoveryKey string) (models.SignedSnapshot, error) {
	baseURL, err := normalizeBaseURL(httpAddr)
	if err != nil {
		return models.SignedSnapshot{}, err
	}

	var signed models.SignedSnapshot
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&signed).
		Get(baseURL + fmt.Sprintf(snapshotPath, url.PathEscape(discoveryKey)))
	if err != nil {
		return models.SignedSnapshot{}, fmt.Errorf("fetch snapshot request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SignedSnapshot{}, err
	}

	p.logger.Debug().
		Str("func", "*peerAdapter.FetchSnapshot").
		Str("peer", baseURL).
		Int64("version", signed.Version).
		Msg("fetched snapshot")

	return signed, nil
}

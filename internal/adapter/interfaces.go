// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client side of the peer protocol.
//
// The primary abstraction is [PeerAdapter], which decouples the swarm and the
// replication job from the underlying protocols. Announcements and snapshots
// travel over HTTP/REST (resty); liveness is checked with the standard gRPC
// health service.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/MKhiriev/key-collection/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/peer_adapter_mock.go -package=mock

// PeerAdapter defines transport-agnostic communication with a remote peer.
// Every method addresses the peer explicitly: one adapter serves the whole
// swarm.
type PeerAdapter interface {
	// Info fetches the announcement of the peer listening on httpAddr.
	Info(ctx context.Context, httpAddr string) (models.PeerInfo, error)

	// FetchSnapshot retrieves the latest signed snapshot the peer serves for
	// discoveryKey. Returns [ErrNotFound] (wrapped) when the peer does not
	// serve that collection.
	FetchSnapshot(ctx context.Context, httpAddr, discoveryKey string) (models.SignedSnapshot, error)

	// Probe checks through the gRPC health service that the peer listening on
	// grpcAddr is serving service. Returns [ErrPeerNotServing] (wrapped) when
	// the peer answers but does not serve it.
	Probe(ctx context.Context, grpcAddr, service string) error

	// Close releases the connections held by the adapter.
	Close() error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PeerInfo is what a node announces about itself to other peers.
type PeerInfo struct {
	// NodeID is a random identifier generated once per process.
	NodeID string `json:"node_id"`

	// GRPCAddress is where the node answers health probes.
	GRPCAddress string `json:"grpc_address"`

	// Topics lists the discovery keys of the collections the node serves.
	Topics []string `json:"topics"`
}

// Serves reports whether the peer announced topic.
func (p PeerInfo) Serves(topic string) bool {
	for _, t := range p.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Peer is the local view of a remote node in the swarm.
type Peer struct {
	// Addr is the HTTP address the peer was bootstrapped with.
	Addr string

	// Info is the last announcement received from the peer.
	Info PeerInfo

	// Connected reports whether the last probe of the peer succeeded.
	Connected bool

	// LastSeen is the time of the last successful probe.
	LastSeen time.Time
}

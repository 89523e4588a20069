// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Snapshot is a full, versioned copy of a collection as published by its
// writer. Version grows by one with every committed transaction, so a peer
// only ever installs a snapshot whose Version is greater than its own.
type Snapshot struct {
	// DiscoveryKey identifies the collection on the network.
	DiscoveryKey string `json:"discovery_key"`

	// Version is the commit counter of the writer at the time of publishing.
	Version int64 `json:"version"`

	// Entries is the complete membership of the collection.
	Entries []KeyRecord `json:"entries"`

	// IssuedAt is the moment the writer signed the snapshot.
	IssuedAt time.Time `json:"issued_at"`
}

// SignedSnapshot is the wire form of a [Snapshot]: a compact EdDSA token
// signed with the collection's secret key.
type SignedSnapshot struct {
	// Token is the signed snapshot.
	Token string `json:"token"`

	// Version duplicates the signed version so that peers can skip
	// verification of snapshots that are not newer than their own.
	Version int64 `json:"version"`
}

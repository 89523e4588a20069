// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package app

// Human-readable lines written to the command output or logs.
const (
	// MsgCollectionKey prefixes the collection key printed by `sync`. Readers
	// pass the key to `list`.
	MsgCollectionKey = "collection key:"

	// MsgServing is logged once a writer serves its collection.
	MsgServing = "serving collection, press Ctrl+C to stop"

	// MsgQuorumNotReached is logged when `list` gives up waiting for peers.
	MsgQuorumNotReached = "not enough peers, the listing would be unreliable"

	// MsgPeerConnected is logged when a peer starts serving the topic.
	MsgPeerConnected = "peer connected"

	// MsgReplicationFailed is logged when a pull from peers fails. The next
	// round retries.
	MsgReplicationFailed = "replication failed"
)

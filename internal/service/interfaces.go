package service

import (
	"context"
	"time"

	"github.com/MKhiriev/key-collection/models"
)

// KeyCollection is a named, persisted set of identity keys.
//
// A collection moves from unopened to ready on the first successful Open and
// to closed on Close. It never leaves the closed state.
type KeyCollection interface {
	// Open makes the collection ready. Only the first call does any work;
	// later calls return its result.
	Open(ctx context.Context) error

	// Close marks the collection closed. The underlying store is not owned
	// by the collection and stays open.
	Close() error

	// Ready reports whether the collection is opened and not closed.
	Ready() bool

	// Writable reports whether this node owns the collection's secret key.
	Writable() bool

	// Key returns the collection key shared with readers.
	Key() string

	// DiscoveryKey returns the topic the collection is announced under.
	DiscoveryKey() string

	// ToMap reads every persisted entry, keyed by normalized key. It opens the
	// collection when it is not ready yet.
	ToMap(ctx context.Context) (models.KeyMap, error)

	// Sync reconciles the collection with desired in one atomic transaction
	// and returns the operations it applied.
	Sync(ctx context.Context, desired models.KeyMap) (models.SyncPlan, error)

	// Get returns the entry stored under key, in any accepted encoding.
	Get(ctx context.Context, key string) (models.KeyRecord, error)

	// Version returns the number of committed transactions.
	Version(ctx context.Context) (int64, error)

	// SignedSnapshot returns the current content of the collection as a
	// signed snapshot.
	SignedSnapshot(ctx context.Context) (models.SignedSnapshot, error)

	// ApplySnapshot verifies signed and installs it when it is newer than the
	// local copy. It reports whether anything was written.
	ApplySnapshot(ctx context.Context, signed models.SignedSnapshot) (bool, error)
}

// SyncService computes reconciliation plans. It is a pure function of its
// inputs.
type SyncService interface {
	BuildSyncPlan(ctx context.Context, desired, persisted models.KeyMap) (models.SyncPlan, error)
}

// PeerCounter reports the number of live connected peers. The count may go
// down as well as up.
type PeerCounter interface {
	PeerCount() int
}

// PeerSource lists the currently connected peers.
type PeerSource interface {
	Peers() []models.Peer
}

// QuorumOptions configures [QuorumGate.AwaitQuorum]. Zero durations are
// replaced by defaults.
type QuorumOptions struct {
	MinPeers     int
	Timeout      time.Duration
	SettleDelay  time.Duration
	PollInterval time.Duration
}

// QuorumGate blocks until enough peers are connected to trust a replicated
// read.
type QuorumGate interface {
	// AwaitQuorum returns nil once source reports at least opts.MinPeers
	// peers and opts.SettleDelay has passed. It returns a
	// [*QuorumTimeoutError] when opts.Timeout elapses first and ctx.Err()
	// when ctx is done.
	AwaitQuorum(ctx context.Context, source PeerCounter, opts QuorumOptions) error
}

// ReplicationJob pulls newer snapshots from connected peers.
type ReplicationJob interface {
	// Start launches a background loop that calls ReplicateOnce every
	// interval until ctx is cancelled or Stop is called.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the background loop and waits for it to exit.
	Stop()

	// ReplicateOnce pulls from every connected peer and reports whether a
	// snapshot was applied.
	ReplicateOnce(ctx context.Context) (bool, error)

	// ReplicateFrom pulls from a single peer.
	ReplicateFrom(ctx context.Context, peer models.Peer) (bool, error)
}

// PeerService answers the requests other peers send to this node.
type PeerService interface {
	// Serve announces collection to other peers.
	Serve(collection KeyCollection)

	// Info returns the announcement of this node.
	Info(ctx context.Context) models.PeerInfo

	// Snapshot returns the signed snapshot of the collection announced under
	// discoveryKey, or [ErrCollectionNotServed].
	Snapshot(ctx context.Context, discoveryKey string) (models.SignedSnapshot, error)
}

// AppInfoService exposes build information of the running binary.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/key-collection/internal/adapter"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

type replicationJob struct {
	collection KeyCollection
	peers      PeerSource
	adapter    adapter.PeerAdapter

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewReplicationJob creates a replicationJob that pulls snapshots of
// collection from the peers listed by peers. The job is idle until Start is
// called.
func NewReplicationJob(collection KeyCollection, peers PeerSource, peerAdapter adapter.PeerAdapter, logger *logger.Logger) ReplicationJob {
	return &replicationJob{
		collection: collection,
		peers:      peers,
		adapter:    peerAdapter,
		logger:     logger,
	}
}

// Start implements ReplicationJob. It stops any previously running loop. If
// interval is zero or negative it defaults to 2 seconds.
func (j *replicationJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if _, err := j.ReplicateOnce(jobCtx); err != nil && jobCtx.Err() == nil {
					j.logger.Warn().Err(err).Str("func", "*replicationJob.Start").Msg("replication round failed")
				}
			}
		}
	}()
}

// Stop implements ReplicationJob. Safe to call when the job is not running.
func (j *replicationJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// ReplicateOnce implements ReplicationJob. A failing peer does not stop the
// round; the failures of all peers are joined into the returned error.
func (j *replicationJob) ReplicateOnce(ctx context.Context) (bool, error) {
	var (
		applied bool
		errs    []error
	)

	for _, peer := range j.peers.Peers() {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if !peer.Connected {
			continue
		}

		ok, err := j.ReplicateFrom(ctx, peer)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		applied = applied || ok
	}

	return applied, errors.Join(errs...)
}

// ReplicateFrom implements ReplicationJob.
func (j *replicationJob) ReplicateFrom(ctx context.Context, peer models.Peer) (bool, error) {
	discoveryKey := j.collection.DiscoveryKey()

	signed, err := j.adapter.FetchSnapshot(ctx, peer.Addr, discoveryKey)
	if err != nil {
		return false, fmt.Errorf("fetch snapshot from %s: %w", peer.Addr, err)
	}

	applied, err := j.collection.ApplySnapshot(ctx, signed)
	if err != nil {
		return false, fmt.Errorf("apply snapshot from %s: %w", peer.Addr, err)
	}

	if applied {
		j.logger.Debug().
			Str("func", "*replicationJob.ReplicateFrom").
			Str("peer", peer.Addr).
			Int64("version", signed.Version).
			Msg("replicated snapshot")
	}

	return applied, nil
}

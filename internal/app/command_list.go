package app

import (
	"context"
	"fmt"

	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/internal/workers"
	"github.com/MKhiriev/key-collection/models"
)

type listCommand struct {
	app *App
}

// Run joins the swarm of the collection identified by args[0] as a
// read-only peer, waits for quorum, pulls the newest snapshot and prints the
// replicated state.
//
// A quorum timeout is returned as a *service.QuorumTimeoutError; nothing is
// printed in that case.
func (c *listCommand) Run(ctx context.Context, args []string) error {
	a := c.app
	if len(args) < 1 || args[0] == "" {
		return fmt.Errorf("%w: list <key>", ErrMissingArgument)
	}

	collection, err := a.services.ReplicaCollection(args[0])
	if err != nil {
		return err
	}
	a.collection = collection
	if err = collection.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrOpeningCollection, err)
	}

	if err = a.serve(collection); err != nil {
		return err
	}

	a.swarm = a.newSwarm()
	job := service.NewReplicationJob(collection, a.swarm, a.adapter, a.logger)
	replicate := func(ctx context.Context, peer models.Peer) {
		if _, err := job.ReplicateFrom(ctx, peer); err != nil {
			a.logger.Warn().Err(err).Str("peer", peer.Addr).Msg(MsgReplicationFailed)
		}
	}
	if err = a.join(ctx, collection, replicate); err != nil {
		return err
	}

	a.workers = workers.NewWorkers(workers.NewReplicationWorker(job, a.cfg.Workers.ReplicationInterval))
	a.workers.Run(ctx)

	opts := service.QuorumOptionsFromConfig(a.cfg.Quorum)
	if err = a.services.QuorumGate.AwaitQuorum(ctx, a.swarm, opts); err != nil {
		return err
	}

	if _, err = job.ReplicateOnce(ctx); err != nil {
		a.logger.Warn().Err(err).Msg(MsgReplicationFailed)
	}

	current, err := collection.ToMap(ctx)
	if err != nil {
		return err
	}
	return writeKeyMap(a.out, current)
}

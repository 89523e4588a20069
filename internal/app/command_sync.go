package app

import (
	"context"
	"fmt"

	"github.com/MKhiriev/key-collection/internal/desiredstate"
	"github.com/MKhiriev/key-collection/internal/store"
)

type syncCommand struct {
	app *App
}

// Run reconciles the writer collection with the document at args[0], prints
// the resulting state and the collection key, then serves the collection to
// peers until ctx is done.
func (c *syncCommand) Run(ctx context.Context, args []string) error {
	a := c.app
	if len(args) < 1 || args[0] == "" {
		return fmt.Errorf("%w: sync <location>", ErrMissingArgument)
	}
	location := args[0]

	desired, err := desiredstate.Load(location)
	if err != nil {
		return err
	}

	a.collection = a.services.WriterCollection(a.cfg.App.Namespace)
	if err = a.collection.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrOpeningCollection, err)
	}

	plan, err := a.collection.Sync(ctx, desired)
	if err != nil {
		// the whole plan rolled back, so rerunning sync is safe
		a.logger.Err(err).Bool("retryable", store.IsRetryable(err)).Msg("sync failed")
		return err
	}
	a.logger.Info().
		Str("location", location).
		Int("added", len(plan.Add)).
		Int("deleted", len(plan.Delete)).
		Msg("collection synced")

	current, err := a.collection.ToMap(ctx)
	if err != nil {
		return err
	}
	if err = writeKeyMap(a.out, current); err != nil {
		return err
	}

	if err = a.serve(a.collection); err != nil {
		return err
	}
	if err = a.join(ctx, a.collection, nil); err != nil {
		return err
	}

	if _, err = fmt.Fprintln(a.out, MsgCollectionKey, a.collection.Key()); err != nil {
		return err
	}
	a.logger.Info().Str("discovery_key", a.collection.DiscoveryKey()).Msg(MsgServing)

	<-ctx.Done()
	return nil
}

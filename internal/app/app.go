package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/MKhiriev/key-collection/internal/adapter"
	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/handler"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/server"
	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/internal/store"
	"github.com/MKhiriev/key-collection/internal/swarm"
	"github.com/MKhiriev/key-collection/internal/utils"
	"github.com/MKhiriev/key-collection/internal/workers"
	"github.com/MKhiriev/key-collection/models"
)

// App owns every resource of a running command. Resources are created lazily
// by the commands and released by Close.
type App struct {
	cfg      *config.StructuredConfig
	storages *store.Storages
	services *service.Services
	adapter  adapter.PeerAdapter
	out      io.Writer

	collection service.KeyCollection
	swarm      *swarm.Swarm
	workers    *workers.Workers
	server     server.Server

	logger *logger.Logger
}

// NewApp opens the storage described by cfg and builds the services of a
// node. Command output is written to out. A random node id is generated when
// cfg does not carry one.
func NewApp(ctx context.Context, cfg *config.StructuredConfig, info models.AppBuildInfo, out io.Writer, logger *logger.Logger) (*App, error) {
	if cfg.App.NodeID == "" {
		cfg.App.NodeID = utils.NewUUIDGenerator().Generate()
	}

	storages, err := store.NewStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storages: %w", err)
	}

	services, err := service.NewServices(storages, cfg, info, logger)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("error creating services: %w", err)
	}

	return &App{
		cfg:      cfg,
		storages: storages,
		services: services,
		adapter:  adapter.NewPeerAdapter(cfg.Adapter, logger),
		out:      out,
		logger:   logger,
	}, nil
}

// SyncCommand returns the `sync <location>` command.
func (a *App) SyncCommand() Command {
	return &syncCommand{app: a}
}

// ListCommand returns the `list <key>` command.
func (a *App) ListCommand() Command {
	return &listCommand{app: a}
}

// serve starts the peer API when at least one address is configured and
// announces the collection on it.
func (a *App) serve(collection service.KeyCollection) error {
	if a.cfg.Server.HTTPAddress == "" && a.cfg.Server.GRPCAddress == "" {
		return nil
	}

	handlers, err := handler.NewHandlers(a.services, a.cfg.Server, a.logger)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(handlers, a.cfg.Server, a.logger)
	if err != nil {
		return err
	}
	if err = srv.Start(); err != nil {
		return err
	}
	a.server = srv

	handlers.Serve(collection)
	return nil
}

func (a *App) newSwarm() *swarm.Swarm {
	return swarm.New(a.adapter, a.cfg.App.NodeID, a.cfg.Adapter.Peers, a.cfg.Workers.ProbeInterval, a.logger)
}

// join enters the swarm of collection. onConnection, when not nil, runs for
// every peer that starts serving the topic.
func (a *App) join(ctx context.Context, collection service.KeyCollection, onConnection swarm.ConnectionHandler) error {
	if a.swarm == nil {
		a.swarm = a.newSwarm()
	}

	a.swarm.OnConnection(func(_ context.Context, peer models.Peer) {
		a.logger.Info().Str("peer", peer.Addr).Str("node_id", peer.Info.NodeID).Msg(MsgPeerConnected)
	})
	if onConnection != nil {
		a.swarm.OnConnection(onConnection)
	}

	return a.swarm.Join(ctx, collection.DiscoveryKey())
}

// Close tears the node down: the swarm is left first so that peers stop
// counting this node, then background work and servers are stopped, and
// the storage is closed last.
func (a *App) Close() error {
	var errs []error

	if a.swarm != nil {
		errs = append(errs, a.swarm.Destroy())
	}
	if a.workers != nil {
		a.workers.Stop()
	}
	if a.server != nil {
		a.server.Shutdown()
	}
	if a.collection != nil {
		errs = append(errs, a.collection.Close())
	}
	errs = append(errs, a.adapter.Close(), a.storages.Close())

	a.logger.Debug().Msg("teardown complete")
	return errors.Join(errs...)
}

// writeKeyMap prints m as `key -> name` lines ordered by key.
func writeKeyMap(w io.Writer, m models.KeyMap) error {
	keys := m.Keys()
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", k, m[k].Name); err != nil {
			return err
		}
	}
	return nil
}

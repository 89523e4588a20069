package service

import (
	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/crypto"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/store"
	"github.com/MKhiriev/key-collection/models"
)

// Services bundles the stateless services of a node. Collections are created
// per command through WriterCollection and ReplicaCollection.
type Services struct {
	KeyChainService crypto.KeyChainService
	QuorumGate      QuorumGate
	PeerService     PeerService
	AppInfoService  AppInfoService

	storages *store.Storages
	logger   *logger.Logger
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, info models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(info, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		KeyChainService: crypto.NewKeyChainService(),
		QuorumGate:      NewQuorumGate(logger),
		PeerService:     NewPeerService(cfg.App.NodeID, cfg.Server.GRPCAddress, logger),
		AppInfoService:  appInfo,
		storages:        storages,
		logger:          logger,
	}, nil
}

// WriterCollection returns the locally owned collection stored under
// namespace.
func (s *Services) WriterCollection(namespace string) KeyCollection {
	return NewKeyCollectionService(s.storages, s.KeyChainService, namespace, s.logger)
}

// ReplicaCollection returns a read-only replica of the collection identified
// by key.
func (s *Services) ReplicaCollection(key string) (KeyCollection, error) {
	return NewReplicaKeyCollectionService(s.storages, s.KeyChainService, key, s.logger)
}

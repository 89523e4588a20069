package service

import (
	"context"
	"slices"
	"sync"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

type peerService struct {
	nodeID      string
	grpcAddress string

	mu          sync.RWMutex
	collections map[string]KeyCollection

	logger *logger.Logger
}

// NewPeerService constructs the [PeerService] of the node nodeID whose health
// service listens on grpcAddress.
func NewPeerService(nodeID, grpcAddress string, logger *logger.Logger) PeerService {
	return &peerService{
		nodeID:      nodeID,
		grpcAddress: grpcAddress,
		collections: make(map[string]KeyCollection),
		logger:      logger,
	}
}

// Serve implements [PeerService]. The collection must be opened: it is
// indexed by its discovery key.
func (s *peerService) Serve(collection KeyCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[collection.DiscoveryKey()] = collection
}

// Info implements [PeerService]. Topics are sorted.
func (s *peerService) Info(_ context.Context) models.PeerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]string, 0, len(s.collections))
	for topic, collection := range s.collections {
		if collection.Ready() {
			topics = append(topics, topic)
		}
	}
	slices.Sort(topics)

	return models.PeerInfo{
		NodeID:      s.nodeID,
		GRPCAddress: s.grpcAddress,
		Topics:      topics,
	}
}

// Snapshot implements [PeerService].
func (s *peerService) Snapshot(ctx context.Context, discoveryKey string) (models.SignedSnapshot, error) {
	s.mu.RLock()
	collection, ok := s.collections[discoveryKey]
	s.mu.RUnlock()

	if !ok || !collection.Ready() {
		return models.SignedSnapshot{}, ErrCollectionNotServed
	}

	return collection.SignedSnapshot(ctx)
}

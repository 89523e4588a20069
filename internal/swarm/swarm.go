// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package swarm tracks the peers serving a collection.
//
// A [Swarm] joins one topic, the discovery key of a collection, and probes a
// static list of bootstrap peers on a ticker. A peer counts as connected while
// it announces the topic over HTTP and its gRPC health service reports the
// topic as SERVING. The connected count feeds the quorum gate and the
// connected peers feed the replication job.
package swarm

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/key-collection/internal/adapter"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

// ErrDestroyed is returned by Join once the swarm has been destroyed.
var ErrDestroyed = errors.New("swarm destroyed")

// ConnectionHandler is called with a peer every time it becomes connected.
type ConnectionHandler func(ctx context.Context, peer models.Peer)

// Swarm is the local view of the peers serving one topic.
type Swarm struct {
	adapter  adapter.PeerAdapter
	nodeID   string
	interval time.Duration

	mu        sync.RWMutex
	topic     string
	peers     map[string]models.Peer
	handlers  []ConnectionHandler
	destroyed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// New constructs a Swarm probing bootstrap every interval. Addresses are
// deduplicated; the node identified by nodeID is never counted as a peer.
func New(peerAdapter adapter.PeerAdapter, nodeID string, bootstrap []string, interval time.Duration, logger *logger.Logger) *Swarm {
	if interval <= 0 {
		interval = time.Second
	}

	peers := make(map[string]models.Peer, len(bootstrap))
	for _, addr := range bootstrap {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		peers[addr] = models.Peer{Addr: addr}
	}

	return &Swarm{
		adapter:  peerAdapter,
		nodeID:   nodeID,
		interval: interval,
		peers:    peers,
		logger:   logger,
	}
}

// OnConnection registers handler. Handlers run on the probe goroutine, one
// after another.
func (s *Swarm) OnConnection(handler ConnectionHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Join starts looking for peers serving topic. The first probe round runs
// before Join returns, so PeerCount is meaningful right away. Joining again
// switches topic and resets every peer to disconnected.
func (s *Swarm) Join(ctx context.Context, topic string) error {
	s.stopLoop()

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	s.topic = topic
	for addr := range s.peers {
		s.peers[addr] = models.Peer{Addr: addr}
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info().
		Str("func", "*Swarm.Join").
		Str("topic", topic).
		Int("bootstrap", len(s.peers)).
		Msg("joined topic")

	s.ProbeOnce(loopCtx)

	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				s.ProbeOnce(loopCtx)
			}
		}
	}()

	return nil
}

// ProbeOnce probes every bootstrap peer concurrently and updates their state.
func (s *Swarm) ProbeOnce(ctx context.Context) {
	s.mu.RLock()
	topic := s.topic
	addrs := make([]string, 0, len(s.peers))
	for addr := range s.peers {
		addrs = append(addrs, addr)
	}
	s.mu.RUnlock()

	if topic == "" {
		return
	}
	slices.Sort(addrs)

	results := make([]models.Peer, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		g.Go(func() error {
			results[i] = s.probe(gctx, addr, topic)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	var connected []models.Peer
	s.mu.Lock()
	if s.topic != topic {
		s.mu.Unlock()
		return
	}
	for _, peer := range results {
		prev := s.peers[peer.Addr]
		if !peer.Connected {
			peer.LastSeen = prev.LastSeen
		}
		if peer.Connected && !prev.Connected {
			connected = append(connected, peer)
		}
		if !peer.Connected && prev.Connected {
			s.logger.Info().Str("func", "*Swarm.ProbeOnce").Str("peer", peer.Addr).Msg("peer disconnected")
		}
		s.peers[peer.Addr] = peer
	}
	handlers := slices.Clone(s.handlers)
	s.mu.Unlock()

	for _, peer := range connected {
		s.logger.Info().
			Str("func", "*Swarm.ProbeOnce").
			Str("peer", peer.Addr).
			Str("node_id", peer.Info.NodeID).
			Msg("peer connected")
		for _, handle := range handlers {
			handle(ctx, peer)
		}
	}
}

func (s *Swarm) probe(ctx context.Context, addr, topic string) models.Peer {
	peer := models.Peer{Addr: addr}
	log := s.logger.With().Str("func", "*Swarm.probe").Str("peer", addr).Logger()

	info, err := s.adapter.Info(ctx, addr)
	if err != nil {
		log.Debug().Err(err).Msg("peer unreachable")
		return peer
	}
	peer.Info = info

	if info.NodeID != "" && info.NodeID == s.nodeID {
		return peer
	}
	if !info.Serves(topic) {
		log.Debug().Msg("peer does not serve topic")
		return peer
	}
	if err = s.adapter.Probe(ctx, info.GRPCAddress, topic); err != nil {
		log.Debug().Err(err).Msg("health probe failed")
		return peer
	}

	peer.Connected = true
	peer.LastSeen = time.Now()
	return peer
}

// PeerCount returns the number of connected peers.
func (s *Swarm) PeerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, peer := range s.peers {
		if peer.Connected {
			n++
		}
	}
	return n
}

// Peers returns the connected peers sorted by address.
func (s *Swarm) Peers() []models.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Peer, 0, len(s.peers))
	for _, peer := range s.peers {
		if peer.Connected {
			out = append(out, peer)
		}
	}
	slices.SortFunc(out, func(a, b models.Peer) int {
		return strings.Compare(a.Addr, b.Addr)
	})
	return out
}

// Topic returns the joined topic, or an empty string.
func (s *Swarm) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// Destroy leaves the topic and stops probing. Every peer is marked
// disconnected. The swarm cannot be joined again.
func (s *Swarm) Destroy() error {
	s.stopLoop()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyed = true
	s.topic = ""
	for addr := range s.peers {
		s.peers[addr] = models.Peer{Addr: addr}
	}

	s.logger.Debug().Str("func", "*Swarm.Destroy").Msg("swarm destroyed")
	return nil
}

func (s *Swarm) stopLoop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

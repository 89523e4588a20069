package service

import (
	"context"
	"time"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
)

type quorumGate struct {
	logger *logger.Logger
}

// NewQuorumGate constructs a [QuorumGate].
func NewQuorumGate(logger *logger.Logger) QuorumGate {
	return &quorumGate{logger: logger}
}

// QuorumOptionsFromConfig converts the quorum section of the configuration.
func QuorumOptionsFromConfig(cfg config.Quorum) QuorumOptions {
	return QuorumOptions{
		MinPeers:     cfg.MinPeers,
		Timeout:      cfg.Timeout,
		SettleDelay:  cfg.SettleDelay,
		PollInterval: cfg.PollInterval,
	}
}

func (o QuorumOptions) withDefaults() QuorumOptions {
	if o.Timeout <= 0 {
		o.Timeout = config.DefaultQuorumTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = config.DefaultSettleDelay
	}
	if o.PollInterval <= 0 {
		o.PollInterval = config.DefaultPollInterval
	}
	return o
}

// AwaitQuorum implements [QuorumGate].
//
// The peer count is checked immediately and then on every tick. The first
// count reaching MinPeers stops polling and the deadline: only the settle
// delay and ctx remain. A MinPeers of zero or less skips polling.
func (g *quorumGate) AwaitQuorum(ctx context.Context, source PeerCounter, opts QuorumOptions) error {
	opts = opts.withDefaults()
	log := g.logger.With().Str("func", "*quorumGate.AwaitQuorum").Logger()

	if opts.MinPeers <= 0 {
		return settle(ctx, opts.SettleDelay)
	}

	start := time.Now()

	reached, err := g.poll(ctx, source, opts, start)
	if err != nil {
		return err
	}

	log.Debug().
		Int("peers", reached).
		Int("min_peers", opts.MinPeers).
		Dur("elapsed", time.Since(start)).
		Msg("quorum reached, settling")

	return settle(ctx, opts.SettleDelay)
}

// poll returns the peer count that satisfied opts.MinPeers.
func (g *quorumGate) poll(ctx context.Context, source PeerCounter, opts QuorumOptions, start time.Time) (int, error) {
	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		count := source.PeerCount()
		if count >= opts.MinPeers {
			return count, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, &QuorumTimeoutError{
				MinPeers:  opts.MinPeers,
				PeerCount: count,
				Elapsed:   time.Since(start),
			}
		case <-ticker.C:
		}
	}
}

func settle(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or one of the ErrInvalid*
// sentinels wrapped with a description otherwise.
func (cfg *StructuredConfig) validate() error {
	if strings.TrimSpace(cfg.App.Namespace) == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidAppConfigs)
	}

	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, ":memory:") {
		return fmt.Errorf("%w: storage must be a file path or a postgres URL", ErrInvalidStorageConfigs)
	}

	if cfg.Adapter.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout", ErrInvalidAdapterConfigs)
	}
	for _, peer := range cfg.Adapter.Peers {
		if _, err := url.Parse(peerURL(peer)); err != nil {
			return fmt.Errorf("%w: peer %q: %w", ErrInvalidAdapterConfigs, peer, err)
		}
	}

	if cfg.Workers.ReplicationInterval < 0 || cfg.Workers.ProbeInterval < 0 {
		return fmt.Errorf("%w: negative interval", ErrInvalidWorkerConfigs)
	}

	if cfg.Quorum.Timeout < 0 || cfg.Quorum.SettleDelay < 0 || cfg.Quorum.PollInterval < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidQuorumConfigs)
	}

	return nil
}

func peerURL(peer string) string {
	if strings.Contains(peer, "://") {
		return peer
	}
	return "http://" + peer
}

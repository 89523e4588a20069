// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// KeyRecord is a single entry of a key collection: a normalized identity key
// and the human-readable name attached to it.
//
// Key is always stored in its canonical z-base-32 rendering (see package
// idenc). Name may be empty: a desired-state document that omits the name of
// an entry produces a record with an empty Name rather than an error.
type KeyRecord struct {
	// Key is the normalized identity key.
	Key string `json:"key"`

	// Name is the human-readable label attached to Key.
	Name string `json:"name"`
}

// KeyMap is the materialized form of a collection, keyed by normalized
// identity key. It is used both for desired state and for persisted state.
type KeyMap map[string]KeyRecord

// Keys returns the keys of m in unspecified order.
func (m KeyMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

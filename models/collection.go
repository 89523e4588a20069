// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Collection is the persisted identity of a key collection inside a storage.
//
// A writer owns both keys. A read-only replica only knows PublicKey, so its
// SecretKey is empty.
type Collection struct {
	// Namespace names the collection inside its storage. Writers use the
	// configured namespace; replicas use the normalized collection key.
	Namespace string

	// PublicKey is the canonical rendering of the ed25519 public key.
	PublicKey string

	// SecretKey is the hex rendering of the ed25519 private key, or empty.
	SecretKey string

	// Version counts committed transactions.
	Version int64
}

// Writable reports whether the collection can sign new snapshots.
func (c Collection) Writable() bool {
	return c.SecretKey != ""
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package idenc canonicalizes the textual encodings of 32-byte identity keys.
//
// An identity key can reach the application as 64 hex characters, as 52
// z-base-32 characters or as raw bytes. Every entry point of the application
// passes keys through Normalize so that two spellings of the same identity
// always collide to one map entry. The canonical rendering is lowercase
// z-base-32.
package idenc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tv42/zbase32"
)

// KeyLength is the size in bytes of an identity key.
const KeyLength = 32

const (
	hexLength    = KeyLength * 2
	zbase32Bits  = KeyLength * 8
	zbase32Chars = (zbase32Bits + 4) / 5
)

// ErrInvalidKeyEncoding is returned when a key cannot be decoded to exactly
// KeyLength bytes.
var ErrInvalidKeyEncoding = errors.New("invalid key encoding")

// Normalize returns the canonical rendering of raw.
//
// Surrounding whitespace is ignored. Hex input may use any letter case;
// z-base-32 input is lowercased before decoding.
func Normalize(raw string) (string, error) {
	b, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return Encode(b), nil
}

// NormalizeBytes returns the canonical rendering of a raw binary key.
func NormalizeBytes(raw []byte) (string, error) {
	if len(raw) != KeyLength {
		return "", fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyEncoding, len(raw), KeyLength)
	}
	return Encode(raw), nil
}

// Decode returns the KeyLength raw bytes of a textual key.
func Decode(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)

	switch len(s) {
	case hexLength:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKeyEncoding, err)
		}
		return b, nil
	case zbase32Chars:
		b, err := zbase32.DecodeBitsString(strings.ToLower(s), zbase32Bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKeyEncoding, err)
		}
		if len(b) != KeyLength {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyEncoding, len(b), KeyLength)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidKeyEncoding, len(s))
	}
}

// Encode renders a binary key in canonical form. It does not check the
// length of b.
func Encode(b []byte) string {
	return zbase32.EncodeToString(b)
}

// MustNormalize is like Normalize but panics on error. It is meant for
// constants and tests.
func MustNormalize(raw string) string {
	k, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return k
}

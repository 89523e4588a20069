// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// discoveryNamespace is the message hashed under the collection key to
// obtain its discovery key.
const discoveryNamespace = "hypercore"

var (
	// ErrInvalidKeyLength is returned when a key does not have the size
	// required by ed25519 or BLAKE2b.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrInvalidSnapshot is returned when a snapshot token cannot be verified.
	ErrInvalidSnapshot = errors.New("invalid snapshot signature")
)

// CollectionKeys is the keypair identifying a collection.
type CollectionKeys struct {
	PublicKey ed25519.PublicKey
	SecretKey ed25519.PrivateKey
}

// snapshotClaims is the payload of a signed snapshot. Issuer holds the
// collection key, Subject the discovery key.
type snapshotClaims struct {
	jwt.RegisteredClaims
	Version int64              `json:"ver"`
	Entries []models.KeyRecord `json:"entries"`
}

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	random io.Reader
	now    func() time.Time
}

// NewKeyChainService constructs a [KeyChainService] backed by the OS CSPRNG.
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		random: rand.Reader,
		now:    time.Now,
	}
}

// GenerateCollectionKeys implements [KeyChainService].
func (k *keyChainService) GenerateCollectionKeys() (CollectionKeys, error) {
	pub, sec, err := ed25519.GenerateKey(k.random)
	if err != nil {
		return CollectionKeys{}, fmt.Errorf("generate collection keys: %w", err)
	}
	return CollectionKeys{PublicKey: pub, SecretKey: sec}, nil
}

// DiscoveryKey implements [KeyChainService]. The public key is used as the
// BLAKE2b-256 MAC key over a fixed namespace string.
func (k *keyChainService) DiscoveryKey(publicKey []byte) ([]byte, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(publicKey))
	}

	h, err := blake2b.New256(publicKey)
	if err != nil {
		return nil, fmt.Errorf("create blake2b: %w", err)
	}
	h.Write([]byte(discoveryNamespace))
	return h.Sum(nil), nil
}

// SignSnapshot implements [KeyChainService].
func (k *keyChainService) SignSnapshot(snapshot models.Snapshot, secretKey ed25519.PrivateKey) (string, error) {
	if len(secretKey) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(secretKey))
	}

	issuedAt := snapshot.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = k.now()
	}

	pub := secretKey.Public().(ed25519.PublicKey)
	claims := &snapshotClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   idenc.Encode(pub),
			Subject:  snapshot.DiscoveryKey,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		Version: snapshot.Version,
		Entries: snapshot.Entries,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing snapshot: %w", err)
	}
	return signed, nil
}

// VerifySnapshot implements [KeyChainService]. Only EdDSA tokens whose
// issuer is the collection key of publicKey are accepted.
func (k *keyChainService) VerifySnapshot(token string, publicKey ed25519.PublicKey) (models.Snapshot, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return models.Snapshot{}, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(publicKey))
	}

	claims := &snapshotClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(idenc.Encode(publicKey)),
		jwt.WithTimeFunc(k.now),
	)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	snapshot := models.Snapshot{
		DiscoveryKey: claims.Subject,
		Version:      claims.Version,
		Entries:      claims.Entries,
	}
	if claims.IssuedAt != nil {
		snapshot.IssuedAt = claims.IssuedAt.Time
	}
	return snapshot, nil
}

package crypto

import (
	"crypto/ed25519"

	"github.com/MKhiriev/key-collection/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService owns all collection-level cryptography. It knows nothing
// about the network, the database or the desired-state document.
//
// Scheme:
//
//	PublicKey, SecretKey = GenerateCollectionKeys()         (once per namespace)
//	DiscoveryKey         = BLAKE2b-256(key=PublicKey, "hypercore")
//	Token                = SignSnapshot(Snapshot, SecretKey) (writer)
//	Snapshot             = VerifySnapshot(Token, PublicKey)  (readers)
type KeyChainService interface {
	// GenerateCollectionKeys creates a fresh ed25519 keypair for a new
	// collection. The public key is the collection key shared with readers.
	GenerateCollectionKeys() (CollectionKeys, error)

	// DiscoveryKey derives the topic a collection is announced under. The
	// discovery key can be published freely: it does not reveal the
	// collection key.
	DiscoveryKey(publicKey []byte) ([]byte, error)

	// SignSnapshot signs snapshot as a compact EdDSA token.
	SignSnapshot(snapshot models.Snapshot, secretKey ed25519.PrivateKey) (string, error)

	// VerifySnapshot checks the signature of token against publicKey and
	// returns the snapshot it carries.
	VerifySnapshot(token string, publicKey ed25519.PublicKey) (models.Snapshot, error)
}

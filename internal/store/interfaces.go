package store

import (
	"context"
	"iter"

	"github.com/MKhiriev/key-collection/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CollectionRepository persists the identity of collections.
type CollectionRepository interface {
	// Find returns the collection stored under namespace or
	// [ErrCollectionNotFound].
	Find(ctx context.Context, namespace string) (models.Collection, error)

	// Create stores a new collection. It fails with
	// [ErrCollectionAlreadyExists] when the namespace is taken.
	Create(ctx context.Context, collection models.Collection) error
}

// KeyCollectionStore is the replicated ordered store of one collection.
//
// Implementations are scoped to a single namespace. Readers may run
// concurrently with a transaction; callers serialize transactions.
type KeyCollectionStore interface {
	// Get returns the entry stored under key or [ErrKeyEntryNotFound].
	Get(ctx context.Context, key string) (models.KeyRecord, error)

	// Iterate yields every entry of the collection once. The sequence is
	// finite and stops at the first error, which is yielded with a zero
	// record. Breaking out of the loop releases the underlying cursor.
	Iterate(ctx context.Context) iter.Seq2[models.KeyRecord, error]

	// Begin opens a write transaction against the collection.
	Begin(ctx context.Context) (Transaction, error)

	// Version returns the number of committed transactions.
	Version(ctx context.Context) (int64, error)

	// Snapshot returns the version and every entry as seen by one read
	// transaction.
	Snapshot(ctx context.Context) (int64, []models.KeyRecord, error)

	// ReplaceAll installs entries as the complete content of the collection
	// and sets its version, in one transaction. Nothing is written and false
	// is returned when version is not greater than the stored version.
	ReplaceAll(ctx context.Context, version int64, entries []models.KeyRecord) (bool, error)
}

// Transaction is a write handle on a [KeyCollectionStore]. Its methods may be
// called from several goroutines; operations are serialized internally.
type Transaction interface {
	// Insert adds rec to the collection.
	Insert(ctx context.Context, rec models.KeyRecord) error

	// Delete removes the entry stored under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Flush bumps the collection version and commits every operation issued
	// against the handle atomically.
	Flush(ctx context.Context) error

	// Rollback abandons the transaction. It is safe to call after Flush.
	Rollback() error
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
)

// Storages owns the database connection and hands out the repositories
// built on it. It is the single owner of the store: components receive the
// repositories, never the connection.
type Storages struct {
	CollectionRepository CollectionRepository

	db     *DB
	logger *logger.Logger
}

// NewStorages connects to the storage named by cfg, applies migrations and
// builds the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("error connecting storage: %w", err)
	}

	if err := db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error migrating storage")
		db.Close()
		return nil, err
	}

	return NewStoragesFromDB(db, log), nil
}

// NewStoragesFromDB builds the repositories on an already migrated db.
func NewStoragesFromDB(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		CollectionRepository: NewCollectionRepository(db, log),
		db:                   db,
		logger:               log,
	}
}

// KeyCollection returns the store of the collection named namespace.
func (s *Storages) KeyCollection(namespace string) KeyCollectionStore {
	return NewKeyCollectionStore(s.db, namespace, s.logger)
}

// IsRetryable reports whether err, returned by one of the repositories, may
// succeed if attempted again.
func (s *Storages) IsRetryable(err error) bool {
	return s.db.IsRetryable(err)
}

// Close releases the database connection.
func (s *Storages) Close() error {
	s.logger.Debug().Str("func", "*Storages.Close").Msg("closing storage")
	return s.db.Close()
}

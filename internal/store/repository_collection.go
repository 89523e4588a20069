package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

// collectionRepository is the SQL implementation of [CollectionRepository]
// over the "collections" table.
type collectionRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewCollectionRepository constructs a [CollectionRepository] backed by db.
func NewCollectionRepository(db *DB, logger *logger.Logger) CollectionRepository {
	logger.Debug().Msg("creating collection repository")
	return &collectionRepository{
		db:     db,
		logger: logger,
	}
}

// Find implements [CollectionRepository].
func (r *collectionRepository) Find(ctx context.Context, namespace string) (models.Collection, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.queries.findCollection(namespace)
	if err != nil {
		log.Err(err).Str("func", "*collectionRepository.Find").Msg("error building query")
		return models.Collection{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var c models.Collection
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&c.Namespace, &c.PublicKey, &c.SecretKey, &c.Version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.Collection{}, ErrCollectionNotFound
	case err != nil:
		log.Err(err).Str("func", "*collectionRepository.Find").Str("namespace", namespace).Msg("error finding collection")
		return models.Collection{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return c, nil
}

// Create implements [CollectionRepository].
func (r *collectionRepository) Create(ctx context.Context, collection models.Collection) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.queries.createCollection(collection)
	if err != nil {
		log.Err(err).Str("func", "*collectionRepository.Create").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrCollectionAlreadyExists
		}
		log.Err(err).Str("func", "*collectionRepository.Create").Str("namespace", collection.Namespace).Msg("error creating collection")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().Str("func", "*collectionRepository.Create").Str("namespace", collection.Namespace).Msg("collection created")
	return nil
}

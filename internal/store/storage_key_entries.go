package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

// keyEntryStorage is the SQL implementation of [KeyCollectionStore] for one
// namespace of the "key_entries" table.
type keyEntryStorage struct {
	db        *DB
	namespace string
	logger    *logger.Logger
}

// NewKeyCollectionStore constructs a [KeyCollectionStore] for namespace.
// The collection row must exist before a transaction is flushed.
func NewKeyCollectionStore(db *DB, namespace string, logger *logger.Logger) KeyCollectionStore {
	return &keyEntryStorage{
		db:        db,
		namespace: namespace,
		logger:    logger,
	}
}

// Get implements [KeyCollectionStore].
func (s *keyEntryStorage) Get(ctx context.Context, key string) (models.KeyRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := s.db.queries.getEntry(s.namespace, key)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Get").Msg("error building query")
		return models.KeyRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var rec models.KeyRecord
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&rec.Key, &rec.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.KeyRecord{}, ErrKeyEntryNotFound
	case err != nil:
		log.Err(err).Str("func", "*keyEntryStorage.Get").Str("namespace", s.namespace).Msg("error scanning key entry")
		return models.KeyRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return rec, nil
}

// Iterate implements [KeyCollectionStore]. Entries are yielded in key order.
func (s *keyEntryStorage) Iterate(ctx context.Context) iter.Seq2[models.KeyRecord, error] {
	return func(yield func(models.KeyRecord, error) bool) {
		log := logger.FromContext(ctx)

		query, args, err := s.db.queries.listEntries(s.namespace)
		if err != nil {
			log.Err(err).Str("func", "*keyEntryStorage.Iterate").Msg("error building query")
			yield(models.KeyRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
			return
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			log.Err(err).Str("func", "*keyEntryStorage.Iterate").Str("namespace", s.namespace).Msg("error listing key entries")
			yield(models.KeyRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rec models.KeyRecord
			if err := rows.Scan(&rec.Key, &rec.Name); err != nil {
				log.Err(err).Str("func", "*keyEntryStorage.Iterate").Msg("error scanning key entry")
				yield(models.KeyRecord{}, fmt.Errorf("%w: %w", ErrScanningRows, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			log.Err(err).Str("func", "*keyEntryStorage.Iterate").Msg("error iterating key entries")
			yield(models.KeyRecord{}, fmt.Errorf("%w: %w", ErrScanningRows, err))
		}
	}
}

// Version implements [KeyCollectionStore]. A namespace without a collection
// row reports [ErrCollectionNotFound].
func (s *keyEntryStorage) Version(ctx context.Context) (int64, error) {
	return s.version(ctx, s.db.DB)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *keyEntryStorage) version(ctx context.Context, q queryRower) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := s.db.queries.selectVersion(s.namespace)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Version").Msg("error building query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var version int64
	err = q.QueryRowContext(ctx, query, args...).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrCollectionNotFound
	case err != nil:
		log.Err(err).Str("func", "*keyEntryStorage.Version").Str("namespace", s.namespace).Msg("error reading version")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return version, nil
}

// Snapshot implements [KeyCollectionStore].
func (s *keyEntryStorage) Snapshot(ctx context.Context) (int64, []models.KeyRecord, error) {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: s.db.dialect == DialectPostgres})
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Snapshot").Msg("failed to begin transaction")
		return 0, nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	version, err := s.version(ctx, tx)
	if err != nil {
		return 0, nil, err
	}

	query, args, err := s.db.queries.listEntries(s.namespace)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Snapshot").Msg("error building query")
		return 0, nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Snapshot").Msg("error listing key entries")
		return 0, nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.KeyRecord, 0)
	for rows.Next() {
		var rec models.KeyRecord
		if err := rows.Scan(&rec.Key, &rec.Name); err != nil {
			log.Err(err).Str("func", "*keyEntryStorage.Snapshot").Msg("error scanning key entry")
			return 0, nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, rec)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return version, entries, nil
}

// Begin implements [KeyCollectionStore].
func (s *keyEntryStorage) Begin(ctx context.Context) (Transaction, error) {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.Begin").Str("namespace", s.namespace).Msg("failed to begin transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	return &sqlTransaction{
		tx:        tx,
		queries:   s.db.queries,
		namespace: s.namespace,
	}, nil
}

// ReplaceAll implements [KeyCollectionStore].
func (s *keyEntryStorage) ReplaceAll(ctx context.Context, version int64, entries []models.KeyRecord) (bool, error) {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.ReplaceAll").Msg("failed to begin transaction")
		return false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	current, err := s.version(ctx, tx)
	if err != nil {
		return false, err
	}
	if version <= current {
		log.Debug().
			Str("func", "*keyEntryStorage.ReplaceAll").
			Int64("current_version", current).
			Int64("offered_version", version).
			Msg("snapshot is not newer, skipping")
		return false, nil
	}

	query, args, err := s.db.queries.deleteAllEntries(s.namespace)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.ReplaceAll").Msg("error clearing key entries")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	for idx, rec := range entries {
		query, args, err = s.db.queries.insertEntry(s.namespace, rec)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "*keyEntryStorage.ReplaceAll").
				Int("iteration", idx+1).
				Int("total", len(entries)).
				Msg("error inserting key entry")
			return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	query, args, err = s.db.queries.setVersion(s.namespace, version)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*keyEntryStorage.ReplaceAll").Msg("error setting version")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "*keyEntryStorage.ReplaceAll").Msg("failed to commit transaction")
		return false, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "*keyEntryStorage.ReplaceAll").
		Str("namespace", s.namespace).
		Int64("version", version).
		Int("entries_count", len(entries)).
		Msg("installed snapshot")
	return true, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

// sqlTransaction is the SQL implementation of [Transaction]. A mutex
// serializes operations because *sql.Tx runs on a single connection.
type sqlTransaction struct {
	mu        sync.Mutex
	tx        *sql.Tx
	queries   queryBuilder
	namespace string
	done      bool
}

// Insert implements [Transaction].
func (t *sqlTransaction) Insert(ctx context.Context, rec models.KeyRecord) error {
	query, args, err := t.queries.insertEntry(t.namespace, rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return t.exec(ctx, "*sqlTransaction.Insert", rec.Key, query, args)
}

// Delete implements [Transaction].
func (t *sqlTransaction) Delete(ctx context.Context, key string) error {
	query, args, err := t.queries.deleteEntry(t.namespace, key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return t.exec(ctx, "*sqlTransaction.Delete", key, query, args)
}

func (t *sqlTransaction) exec(ctx context.Context, fn, key, query string, args []any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTransactionDone
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Str("key", key).Msg("error executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// Flush implements [Transaction]. The collection version is bumped inside
// the same transaction so that readers observe entries and version together.
func (t *sqlTransaction) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return ErrTransactionDone
	}
	log := logger.FromContext(ctx)

	query, args, err := t.queries.bumpVersion(t.namespace)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlTransaction.Flush").Msg("error bumping version")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Error().Str("func", "*sqlTransaction.Flush").Str("namespace", t.namespace).Msg("collection row is missing")
		return ErrCollectionNotFound
	}

	t.done = true
	if commitErr := t.tx.Commit(); commitErr != nil {
		log.Err(commitErr).Str("func", "*sqlTransaction.Flush").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}
	return nil
}

// Rollback implements [Transaction].
func (t *sqlTransaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true

	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL wraps a sqlmock connection as a SQLite-flavoured DB.
func newDBFromSQL(db *sql.DB) *DB {
	return newDB(db, DialectSQLite, logger.Nop())
}

func newTestStorages(t *testing.T) *Storages {
	t.Helper()
	s, err := NewStorages(testContext(), config.Storage{DSN: filepath.Join(t.TempDir(), "kc", "db.sqlite")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestCollection(t *testing.T, s *Storages, namespace string) KeyCollectionStore {
	t.Helper()
	require.NoError(t, s.CollectionRepository.Create(testContext(), models.Collection{
		Namespace: namespace,
		PublicKey: "pk-" + namespace,
		SecretKey: "sk-" + namespace,
	}))
	return s.KeyCollection(namespace)
}

func collect(t *testing.T, kc KeyCollectionStore) []models.KeyRecord {
	t.Helper()
	var out []models.KeyRecord
	for rec, err := range kc.Iterate(testContext()) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

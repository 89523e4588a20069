package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/key-collection/models"
)

const (
	collectionsTable = "collections"
	keyEntriesTable  = "key_entries"

	colNamespace = "namespace"
	colPublicKey = "public_key"
	colSecretKey = "secret_key"
	colVersion   = "version"
	colEntryKey  = "entry_key"
	colName      = "name"
)

// queryBuilder renders the statements of the store with the placeholders of
// one dialect.
type queryBuilder struct {
	sq sq.StatementBuilderType
}

func (b queryBuilder) findCollection(namespace string) (string, []any, error) {
	return b.sq.
		Select(colNamespace, colPublicKey, colSecretKey, colVersion).
		From(collectionsTable).
		Where(sq.Eq{colNamespace: namespace}).
		ToSql()
}

func (b queryBuilder) createCollection(c models.Collection) (string, []any, error) {
	return b.sq.
		Insert(collectionsTable).
		Columns(colNamespace, colPublicKey, colSecretKey, colVersion).
		Values(c.Namespace, c.PublicKey, c.SecretKey, c.Version).
		ToSql()
}

func (b queryBuilder) selectVersion(namespace string) (string, []any, error) {
	return b.sq.
		Select(colVersion).
		From(collectionsTable).
		Where(sq.Eq{colNamespace: namespace}).
		ToSql()
}

func (b queryBuilder) bumpVersion(namespace string) (string, []any, error) {
	return b.sq.
		Update(collectionsTable).
		Set(colVersion, sq.Expr(colVersion+" + 1")).
		Where(sq.Eq{colNamespace: namespace}).
		ToSql()
}

func (b queryBuilder) setVersion(namespace string, version int64) (string, []any, error) {
	return b.sq.
		Update(collectionsTable).
		Set(colVersion, version).
		Where(sq.Eq{colNamespace: namespace}).
		ToSql()
}

func (b queryBuilder) getEntry(namespace, key string) (string, []any, error) {
	return b.sq.
		Select(colEntryKey, colName).
		From(keyEntriesTable).
		Where(sq.And{sq.Eq{colNamespace: namespace}, sq.Eq{colEntryKey: key}}).
		ToSql()
}

func (b queryBuilder) listEntries(namespace string) (string, []any, error) {
	return b.sq.
		Select(colEntryKey, colName).
		From(keyEntriesTable).
		Where(sq.Eq{colNamespace: namespace}).
		OrderBy(colEntryKey).
		ToSql()
}

func (b queryBuilder) insertEntry(namespace string, rec models.KeyRecord) (string, []any, error) {
	return b.sq.
		Insert(keyEntriesTable).
		Columns(colNamespace, colEntryKey, colName).
		Values(namespace, rec.Key, rec.Name).
		ToSql()
}

func (b queryBuilder) deleteEntry(namespace, key string) (string, []any, error) {
	return b.sq.
		Delete(keyEntriesTable).
		Where(sq.And{sq.Eq{colNamespace: namespace}, sq.Eq{colEntryKey: key}}).
		ToSql()
}

func (b queryBuilder) deleteAllEntries(namespace string) (string, []any, error) {
	return b.sq.
		Delete(keyEntriesTable).
		Where(sq.Eq{colNamespace: namespace}).
		ToSql()
}

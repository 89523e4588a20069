package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/migrations"
)

// Dialect names the SQL backend behind a [DB].
type Dialect string

const (
	// DialectSQLite is the embedded default backend.
	DialectSQLite Dialect = "sqlite3"
	// DialectPostgres is selected for postgres:// DSNs.
	DialectPostgres Dialect = "pgx"
)

// DB wraps a *sql.DB with the dialect-specific pieces every repository
// needs: squirrel queries rendered with the right placeholders and an
// error classifier.
type DB struct {
	*sql.DB
	dialect            Dialect
	queries            queryBuilder
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, dialect Dialect, log *logger.Logger) *DB {
	db := &DB{
		DB:      conn,
		dialect: dialect,
		logger:  log,
	}

	switch dialect {
	case DialectPostgres:
		db.queries = queryBuilder{sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
		db.errorClassificator = NewPostgresErrorClassifier()
	default:
		db.queries = queryBuilder{sq: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
		db.errorClassificator = NewSQLiteErrorClassifier()
	}

	return db
}

// NewConnect opens the storage named by cfg.DSN: a PostgreSQL database for
// postgres:// and postgresql:// URLs, a SQLite file otherwise.
func NewConnect(ctx context.Context, cfg config.Storage, log *logger.Logger) (*DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("%w: empty", ErrUnsupportedDSN)
	case isPostgresDSN(dsn):
		return NewConnectPostgres(ctx, dsn, log)
	default:
		return NewConnectSQLite(ctx, dsn, log)
	}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Dialect returns the backend of db.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, string(db.dialect))
}

// IsRetryable reports whether err, returned by an operation on db, may
// succeed if attempted again.
func (db *DB) IsRetryable(err error) bool {
	return db.errorClassificator.Classify(err) == Retryable
}

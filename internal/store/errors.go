package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCollectionNotFound is returned when no collection is stored under
	// the requested namespace.
	ErrCollectionNotFound = errors.New("collection was not found")

	// ErrCollectionAlreadyExists is returned when creating a collection whose
	// namespace is already taken.
	ErrCollectionAlreadyExists = errors.New("collection already exists")

	// ErrKeyEntryNotFound is returned by Get when the collection has no entry
	// for the requested key.
	ErrKeyEntryNotFound = errors.New("key entry was not found")

	// ErrTransactionDone is returned when an operation is issued against a
	// transaction that was already flushed or rolled back.
	ErrTransactionDone = errors.New("transaction already finished")

	// ErrUnsupportedDSN is returned when a DSN names neither a file nor a
	// PostgreSQL URL.
	ErrUnsupportedDSN = errors.New("unsupported storage dsn")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan key entry row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan key entry rows")
)

package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrLayoutChanged means a scraped page no longer has the expected shape.
	ErrLayoutChanged = crerr.New("page layout changed")
	// ErrSchemaMismatch aborts an append whose columns differ from the stored table.
	ErrSchemaMismatch   = crerr.New("schema mismatch")
	ErrRetriesExhausted = crerr.New("navigation retries exhausted")
	// ErrMatchUnavailable marks a fixture that has not been played yet.
	ErrMatchUnavailable = crerr.New("match not available")
)

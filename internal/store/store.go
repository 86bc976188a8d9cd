// Package store provides the durable key-value persistence layer for
// attempt history and the last-used login identifier.
//
// The interface surfaces failures explicitly; the degrade-to-default
// policy (empty history, no last login) is the caller's decision, not
// the store's.
package store

import (
	"context"

	"github.com/prepbox/examsim-backend/internal/model"
)

// Store is the narrow persistence abstraction over two logical records:
// the last-used login identifier and the capped attempt collection.
type Store interface {
	// LastLogin returns the last-used login identifier. found is false
	// when no identifier has been recorded yet.
	LastLogin(ctx context.Context) (value string, found bool, err error)

	// SetLastLogin records the last-used login identifier.
	SetLastLogin(ctx context.Context, username string) error

	// Attempts returns the persisted attempt collection in append
	// order, oldest first. A missing record yields an empty slice.
	Attempts(ctx context.Context) ([]model.Attempt, error)

	// AppendAttempt appends one attempt and drops the oldest entries
	// past the retention cap.
	AppendAttempt(ctx context.Context, attempt model.Attempt) error

	// Close releases the underlying medium.
	Close() error
}

package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope. Nested calls
	// join the outer transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks reads made with the returned context as SELECT ... FOR UPDATE.
	WithLock(ctx context.Context) context.Context
}

package outbound

import (
	"context"
)

// RepositoryProvider exposes the repositories bound to the running transaction.
type RepositoryProvider interface {
	Samples() SampleRepository
}

// UnitOfWork commits everything fn did, or nothing when fn returns an error.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(provider RepositoryProvider) error) error
}

package outbound

import "context"

// KeyedLocker gives mutual exclusion per key. Distinct keys never block each other.
type KeyedLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

package ports

import "context"

// Locker serializes startup work across replicas. Acquire blocks until the
// lock is held or ctx ends; the returned func releases it.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Package cache defines the outbound cache-invalidation contract. The core
// never caches; it only signals an external cache layer that task listings
// are stale after a successful mutation or reconciliation run.
package cache

import "context"

// Invalidator receives the "invalidate task listings" signal.
type Invalidator interface {
	InvalidateTaskListings(ctx context.Context) error
}

// Func adapts an ordinary function to the Invalidator interface.
type Func func(ctx context.Context) error

// InvalidateTaskListings calls f.
func (f Func) InvalidateTaskListings(ctx context.Context) error {
	return f(ctx)
}

// Nop returns an Invalidator that does nothing, for deployments without a
// read-side cache.
func Nop() Invalidator {
	return Func(func(context.Context) error { return nil })
}

package runner

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate is the mutual-exclusion gate around build-tool invocations. The tool
// is not safe for concurrent runs against the same project state (shared
// build directories and the result artifact), so every discovery, execution
// and debug-compile invocation goes through one shared Gate.
//
// The gate serializes the process slot, not argument identity: a second
// logical request for the same target simply queues.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a Gate admitting one holder
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Acquire suspends the caller until any prior holder releases, or the
// context is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release releases the gate. It must be paired with a successful Acquire on
// every exit path.
func (g *Gate) Release() {
	g.sem.Release(1)
}

// With runs fn while holding the gate
func (g *Gate) With(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

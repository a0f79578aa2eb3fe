package timingwheel

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor runs a due task's action. BoundedExecutor runs it off the
// driver goroutine, so a slow action does not stall clock advancement
// and Spawn blocks only while waiting for a concurrency slot;
// InlineExecutor runs it on the calling goroutine, so Spawn returns
// only once the action has finished.
type Executor interface {
	Spawn(action func())
}

// InlineExecutor runs the action synchronously, on the calling
// goroutine. It exists so tests can exercise the wheel without the
// nondeterminism of real concurrency, per the core's design: the wheel
// must be testable with a synchronous executor and deployable atop a
// production worker pool without modification.
type InlineExecutor struct{}

// Spawn runs action immediately and returns once it completes.
func (InlineExecutor) Spawn(action func()) { action() }

// BoundedExecutor runs each action on its own goroutine, capped by a
// weighted semaphore so a burst of simultaneously-expiring tasks can't
// spawn unbounded goroutines.
type BoundedExecutor struct {
	sem *semaphore.Weighted
}

// NewBoundedExecutor builds an Executor that allows at most maxInFlight
// concurrently-running actions; callers beyond that limit block in
// Spawn until a slot frees up.
func NewBoundedExecutor(maxInFlight int64) *BoundedExecutor {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &BoundedExecutor{sem: semaphore.NewWeighted(maxInFlight)}
}

// Spawn blocks until a concurrency slot is available, then runs action
// on a new goroutine and returns without waiting for it to finish.
func (e *BoundedExecutor) Spawn(action func()) {
	_ = e.sem.Acquire(context.Background(), 1)
	go func() {
		defer e.sem.Release(1)
		action()
	}()
}

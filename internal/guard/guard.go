// Package guard serializes orchestration runs. The generation engine and
// the shared resource map are not safe for concurrent mutation, so at
// most one run may execute at a time per guard.
package guard

import "sync"

// InvocationGuard is an explicit mutual-exclusion object. It is injected
// into the orchestrator rather than held as package state so tests can
// instantiate independent guards.
//
// Acquisition blocks without timeout until the holder releases it and is
// not reentrant: a run must never invoke the orchestrator again from
// inside its own guarded section.
type InvocationGuard struct {
	mutex sync.Mutex
}

// New creates an unlocked guard.
func New() *InvocationGuard {
	return &InvocationGuard{}
}

// WithExclusiveAccess runs action while holding the guard. The guard is
// released on every exit path, including a panicking action.
func (g *InvocationGuard) WithExclusiveAccess(action func() error) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return action()
}

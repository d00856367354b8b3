// Package gate serializes access to exclusive resources: the physical
// pointer/keyboard device and the detection backend. Concurrent requests
// are rejected with a busy error instead of queueing, since stacking
// physical input or detector calls corrupts results.
package gate

import (
	"sync"

	perrors "screen-parser/internal/errors"
)

// Gate is an explicit mutual-exclusion token source. At most one token is
// outstanding at a time.
type Gate struct {
	mu   sync.Mutex
	held bool
	name string
}

// New creates a gate. The name appears in busy errors.
func New(name string) *Gate {
	return &Gate{name: name}
}

// Token represents held exclusive access. Release it when done.
type Token struct {
	g        *Gate
	released bool
}

// TryAcquire claims the gate or fails immediately with a busy error.
func (g *Gate) TryAcquire() (*Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return nil, perrors.New(perrors.CodeBusy, "%s is already in progress", g.name)
	}
	g.held = true
	return &Token{g: g}, nil
}

// Release returns the gate. Releasing a token twice is a no-op.
func (t *Token) Release() {
	if t == nil {
		return
	}
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.g.held = false
}

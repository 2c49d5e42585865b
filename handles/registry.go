// Package handles tracks live native handles and their release state. The
// native library hands out opaque integer identifiers for connections, wallet
// searches, credentials, and proofs; each must be released exactly once, and
// the registry keeps enough local state to fast-fail operations against
// handles it already knows to be dead.
package handles

import (
	"context"
	"fmt"
	"sync"

	verrors "github.com/aviary-id/go-vcx/domain/errors"
)

// Kind tags what native object a handle denotes, and therefore which native
// release entry point applies to it.
type Kind string

const (
	KindConnection Kind = "connection"
	KindCredential Kind = "credential"
	KindProof      Kind = "proof"
	KindSearch     Kind = "wallet_search"
)

// Releaser performs the native release call for one handle. Implementations
// route through the callback bridge; the registry stays independent of the
// native surface so tests can observe release traffic directly.
type Releaser func(ctx context.Context, kind Kind, id uint32) error

type entry struct {
	kind     Kind
	released bool
}

// Registry is the process-local bookkeeping for native handles. Safe for
// concurrent use.
type Registry struct {
	release Releaser
	entries map[uint32]*entry
	mu      sync.Mutex
}

// NewRegistry creates an empty registry that releases handles through release.
func NewRegistry(release Releaser) *Registry {
	return &Registry{
		release: release,
		entries: make(map[uint32]*entry),
	}
}

// Register records a freshly created native handle as live. Called after a
// successful create-outcome.
func (r *Registry) Register(kind Kind, id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry{kind: kind}
}

// Release invokes the native release call for the handle and marks the local
// state released regardless of the native result. The native release is
// advisory for idempotence: releasing twice cannot corrupt local bookkeeping,
// though the second native call may itself report a non-zero code, which is
// surfaced as the failure of that specific release.
func (r *Registry) Release(ctx context.Context, id uint32) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("handle %d is not registered", id)
	}
	kind := e.kind
	r.mu.Unlock()

	err := r.release(ctx, kind, id)

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		e.released = true
	}
	r.mu.Unlock()

	return err
}

// AssertLive fast-fails with HandleReleased when the registry knows the
// handle to be released. Unknown handles pass: this check is a best-effort
// optimization, not a substitute for the native layer's own validation.
func (r *Registry) AssertLive(op string, id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.released {
		return verrors.NewHandleReleased(op, id)
	}
	return nil
}

// Live reports whether the handle is registered and not released.
func (r *Registry) Live(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && !e.released
}

// KindOf returns the registered kind of a handle.
func (r *Registry) KindOf(id uint32) (Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return "", false
	}
	return e.kind, true
}

// Package host manages the process-wide runtime binding to the native
// library: loading it from a configured path, gating calls on readiness, and
// tearing it down. The binding is an explicit state machine behind a lock so
// no call ever observes it mid-transition, and construction is injectable so
// tests can exercise every transition without a real shared library.
package host

import (
	"log/slog"
	"sync"

	"github.com/aviary-id/go-vcx/bridge"
	verrors "github.com/aviary-id/go-vcx/domain/errors"
	"github.com/aviary-id/go-vcx/domain/ports"
)

// State is the runtime binding lifecycle state.
type State uint8

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Binding is the single process-wide slot holding the loaded native surface.
type Binding struct {
	open    ports.Opener
	calls   *bridge.Bridge
	surface ports.Surface
	log     *slog.Logger
	path    string
	mu      sync.Mutex
	state   State
}

// Option configures a Binding.
type Option func(*Binding)

// WithOpener replaces the library opener. Tests inject an opener returning a
// fake surface; the default is the cgo adapter.
func WithOpener(open ports.Opener) Option {
	return func(b *Binding) {
		if open != nil {
			b.open = open
		}
	}
}

// WithLogger sets the logger for lifecycle diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(b *Binding) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBinding creates an uninitialized binding whose completions feed calls.
func NewBinding(calls *bridge.Bridge, opts ...Option) *Binding {
	b := &Binding{
		calls: calls,
		open:  defaultOpener,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current lifecycle state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Path returns the library path of the active binding, empty when not ready.
func (b *Binding) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// Open loads the native library at path and moves the binding to Ready.
//
// Opening with the path of an already-ready binding is a no-op. Rebinding to a
// different path requires a shutdown first; while calls are outstanding the
// transition is rejected outright. An empty path, an unloadable library, or a
// missing entry point fails with InvalidConfiguration and leaves the binding
// Uninitialized.
func (b *Binding) Open(path string) error {
	b.mu.Lock()
	switch b.state {
	case StateReady:
		defer b.mu.Unlock()
		if path == b.path {
			return nil
		}
		if n := b.calls.Pending(); n > 0 {
			return verrors.NewInvalidConfiguration(
				"cannot rebind to %q: %d calls still outstanding against %q", path, n, b.path)
		}
		return verrors.NewInvalidConfiguration(
			"already bound to %q: shut down before binding %q", b.path, path)
	case StateInitializing, StateShuttingDown:
		defer b.mu.Unlock()
		return verrors.NewNotInitialized("")
	}

	if path == "" {
		b.mu.Unlock()
		return verrors.NewInvalidConfiguration("library path is empty")
	}
	b.state = StateInitializing
	b.mu.Unlock()

	surface, err := b.open(path, b.calls)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateUninitialized
		return verrors.NewInvalidConfiguration("cannot load native library %q: %v", path, err)
	}
	b.surface = surface
	b.path = path
	b.state = StateReady
	b.calls.SetMessageLookup(surface.ErrorMessage)
	b.log.Info("native library bound", "path", path)
	return nil
}

// Surface returns the loaded native surface, or NotInitialized when the
// binding is not Ready. op names the operation for the error.
func (b *Binding) Surface(op string) (ports.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateReady {
		return nil, verrors.NewNotInitialized(op)
	}
	return b.surface, nil
}

// Shutdown invokes the native global teardown, forwarding deleteWallet
// verbatim, then clears the binding. Calls arriving after shutdown has begun
// fail with NotInitialized. Re-opening afterwards is allowed.
func (b *Binding) Shutdown(deleteWallet bool) error {
	b.mu.Lock()
	if b.state != StateReady {
		defer b.mu.Unlock()
		return verrors.NewNotInitialized("vcx_shutdown")
	}
	b.state = StateShuttingDown
	surface := b.surface
	b.mu.Unlock()

	var err error
	if status := surface.Teardown(deleteWallet); status != 0 {
		err = verrors.Translate(verrors.KindSubmissionFailure, "vcx_shutdown", uint32(status), surface.ErrorMessage)
	}
	if closeErr := surface.Close(); closeErr != nil {
		b.log.Warn("unloading native library failed", "error", closeErr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface = nil
	b.path = ""
	b.state = StateUninitialized
	b.calls.SetMessageLookup(nil)
	b.log.Info("native library unbound", "wallet_deleted", deleteWallet)
	return err
}

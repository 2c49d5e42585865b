// Package bridge converts the native library's submit-then-callback calling
// convention into awaitable request/response calls. A caller submits a native
// invocation under a freshly minted correlation token; the native layer later
// invokes a completion trampoline with that token on a thread of its own
// choosing, and the bridge resolves the matching pending call exactly once.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	verrors "github.com/aviary-id/go-vcx/domain/errors"
)

// Token is a process-unique correlation identifier minted per outstanding
// native call. The native library tags its eventual callback with the token it
// was handed at submit time. A token is reused only after the call that owned
// it has completed and left the pending set.
type Token uint32

// Status is the immediate result of submitting a native call. Zero means the
// native layer accepted the call and will invoke the completion callback
// exactly once; any other value means the callback will never fire.
type Status uint32

// PayloadKind discriminates the closed set of native result encodings.
type PayloadKind uint8

const (
	// PayloadAbsent marks a completion that carries no result value.
	PayloadAbsent PayloadKind = iota
	// PayloadHandle marks a numeric native handle result.
	PayloadHandle
	// PayloadString marks a C-string result, already copied to Go memory.
	PayloadString
	// PayloadBytes marks an opaque byte-buffer result, already copied.
	PayloadBytes
)

// Payload is the native-encoded result delivered by a completion callback.
// It is ephemeral: domain code decodes it immediately via internal/decode.
type Payload struct {
	Str    string
	Bytes  []byte
	Handle uint32
	Kind   PayloadKind
}

// AbsentPayload returns the empty payload for callbacks with no result fields.
func AbsentPayload() Payload { return Payload{Kind: PayloadAbsent} }

// HandlePayload wraps a native handle result.
func HandlePayload(id uint32) Payload { return Payload{Kind: PayloadHandle, Handle: id} }

// StringPayload wraps a string result.
func StringPayload(s string) Payload { return Payload{Kind: PayloadString, Str: s} }

// BytesPayload wraps an opaque buffer result.
func BytesPayload(b []byte) Payload { return Payload{Kind: PayloadBytes, Bytes: b} }

// Outcome is a completed call's native error code and payload.
type Outcome struct {
	Payload Payload
	Code    uint32
}

// pendingCall is one outstanding native call. It owns the completion
// trampoline's Go-side resources for the whole pending interval: the buffered
// channel stays reachable until the resolution path sends into it, so a
// callback can never race a freed receiver.
type pendingCall struct {
	fn   string
	done chan Outcome
}

// Bridge correlates native completion callbacks with their originating calls.
// Safe for concurrent use: submitters insert and callback threads look up and
// remove under the same lock.
type Bridge struct {
	log      *slog.Logger
	pending  map[Token]*pendingCall
	messages verrors.MessageLookup
	mu       sync.Mutex
	next     Token
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for protocol-violation diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// WithMessageLookup sets the native code-to-message facility used when
// translating failure codes.
func WithMessageLookup(lookup verrors.MessageLookup) Option {
	return func(b *Bridge) {
		b.messages = lookup
	}
}

// New creates an empty Bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		pending: make(map[Token]*pendingCall),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetMessageLookup installs the code-to-message facility after construction.
// The runtime binding calls this once the native library is loaded, since the
// lookup itself is a native entry point.
func (b *Bridge) SetMessageLookup(lookup verrors.MessageLookup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = lookup
}

func (b *Bridge) lookup() verrors.MessageLookup {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages
}

// Pending returns the number of outstanding calls.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// register mints a fresh token and inserts a pending call under it.
// Registration happens-before the native invocation so the callback cannot
// arrive before its receiver exists.
func (b *Bridge) register(fn string) (Token, *pendingCall) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		b.next++
		if _, taken := b.pending[b.next]; !taken {
			break
		}
	}
	pc := &pendingCall{fn: fn, done: make(chan Outcome, 1)}
	b.pending[b.next] = pc
	return b.next, pc
}

func (b *Bridge) remove(token Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, token)
}

// Submit registers a pending call, invokes the native call with its token, and
// blocks until the completion callback resolves it or ctx is done.
//
// A non-zero immediate status resolves the call at once as a SubmissionFailure
// and removes the pending entry; the native layer never invokes the callback
// in that case. A non-zero callback code resolves as a CallbackFailure through
// the same translation path.
//
// Cancellation abandons the wait only. The native layer offers no way to
// cancel in-flight work, so the pending entry stays registered to absorb a
// callback that may still arrive.
func (b *Bridge) Submit(ctx context.Context, fn string, invoke func(Token) Status) (Payload, error) {
	token, pc := b.register(fn)

	if status := invoke(token); status != 0 {
		b.remove(token)
		return Payload{}, verrors.Translate(verrors.KindSubmissionFailure, fn, uint32(status), b.lookup())
	}

	select {
	case out := <-pc.done:
		if out.Code != 0 {
			return Payload{}, verrors.Translate(verrors.KindCallbackFailure, fn, out.Code, b.lookup())
		}
		return out.Payload, nil
	case <-ctx.Done():
		return Payload{}, fmt.Errorf("%s: wait abandoned with call still in flight: %w", fn, ctx.Err())
	}
}

// Complete resolves the pending call registered under token. It is invoked by
// the completion trampolines, typically from a native thread.
//
// An unknown token is a protocol violation: the callback is stale or a
// duplicate. It is logged and dropped; no caller is left waiting for it and no
// unrelated pending call is touched.
func (b *Bridge) Complete(token Token, code uint32, payload Payload) {
	b.mu.Lock()
	pc, ok := b.pending[token]
	if !ok {
		b.mu.Unlock()
		b.log.Warn("dropping callback for unknown correlation token",
			"kind", string(verrors.KindProtocolViolation),
			"token", uint32(token),
			"code", code)
		return
	}
	delete(b.pending, token)
	b.mu.Unlock()

	// Buffered channel: the send cannot block even when the waiter already
	// abandoned, and the entry was removed under the lock so a second
	// Complete for this token takes the unknown-token path above.
	pc.done <- Outcome{Code: code, Payload: payload}
}

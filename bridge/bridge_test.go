package bridge

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/aviary-id/go-vcx/domain/errors"
)

func TestSubmit_ResolvesOnCallback(t *testing.T) {
	b := New()

	payload, err := b.Submit(context.Background(), "vcx_connection_connect", func(token Token) Status {
		go b.Complete(token, 0, StringPayload("ok"))
		return 0
	})

	require.NoError(t, err)
	assert.Equal(t, PayloadString, payload.Kind)
	assert.Equal(t, "ok", payload.Str)
	assert.Zero(t, b.Pending())
}

func TestSubmit_CallbackFailure(t *testing.T) {
	b := New(WithMessageLookup(func(code uint32) string {
		return "connection does not exist"
	}))

	_, err := b.Submit(context.Background(), "vcx_connection_serialize", func(token Token) Status {
		go b.Complete(token, 1010, AbsentPayload())
		return 0
	})

	require.Error(t, err)
	se, ok := verrors.AsStructured(err)
	require.True(t, ok)
	assert.Equal(t, verrors.KindCallbackFailure, se.Kind)
	assert.Equal(t, uint32(1010), se.Code)
	assert.Equal(t, "connection does not exist", se.Message)
	assert.Equal(t, "vcx_connection_serialize", se.NativeFunc)
}

func TestSubmit_SubmissionFailureCleansUp(t *testing.T) {
	b := New()
	var seen Token

	_, err := b.Submit(context.Background(), "vcx_wallet_add_record", func(token Token) Status {
		seen = token
		return 1
	})

	require.Error(t, err)
	se, ok := verrors.AsStructured(err)
	require.True(t, ok)
	assert.Equal(t, verrors.KindSubmissionFailure, se.Kind)
	assert.Equal(t, uint32(1), se.Code)

	// The entry must be gone: a late callback for this token is a protocol
	// violation, not a resolution.
	assert.Zero(t, b.Pending())
	assert.NotPanics(t, func() {
		b.Complete(seen, 0, StringPayload("late"))
	})
	assert.Zero(t, b.Pending())
}

func TestComplete_UnknownTokenIsDropped(t *testing.T) {
	b := New(WithLogger(slog.Default()))

	resolved := make(chan Payload, 1)
	go func() {
		p, err := b.Submit(context.Background(), "vcx_credential_get_offers", func(token Token) Status {
			go func() {
				// A stale callback for a token nobody owns must not touch
				// the live pending call.
				b.Complete(token+1000, 0, StringPayload("stale"))
				b.Complete(token, 0, StringPayload("offers"))
			}()
			return 0
		})
		require.NoError(t, err)
		resolved <- p
	}()

	select {
	case p := <-resolved:
		assert.Equal(t, "offers", p.Str)
	case <-time.After(5 * time.Second):
		t.Fatal("pending call was never resolved")
	}
}

func TestComplete_DuplicateCallbackResolvesOnce(t *testing.T) {
	b := New()

	var token Token
	payload, err := b.Submit(context.Background(), "vcx_connection_create", func(tok Token) Status {
		token = tok
		go b.Complete(tok, 0, HandlePayload(7))
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), payload.Handle)

	// Second arrival finds no pending entry and is dropped.
	assert.NotPanics(t, func() {
		b.Complete(token, 0, HandlePayload(8))
	})
	assert.Zero(t, b.Pending())
}

func TestSubmit_ContextCancelKeepsEntryRegistered(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan Token, 1)
	go func() {
		_, err := b.Submit(ctx, "vcx_agent_provision_async", func(token Token) Status {
			release <- token
			return 0
		})
		assert.ErrorIs(t, err, context.Canceled)
	}()

	token := <-release
	cancel()

	// The waiter gave up, but the trampoline's receiver must stay alive for
	// the callback that may still arrive.
	require.Eventually(t, func() bool { return b.Pending() == 1 }, time.Second, time.Millisecond)

	b.Complete(token, 0, AbsentPayload())
	assert.Zero(t, b.Pending())
}

func TestSubmit_ConcurrentCallsCorrelateIndependently(t *testing.T) {
	b := New()

	const calls = 64
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(n uint32) {
			defer wg.Done()
			payload, err := b.Submit(context.Background(), "vcx_wallet_get_record", func(token Token) Status {
				go b.Complete(token, 0, HandlePayload(n))
				return 0
			})
			require.NoError(t, err)
			// Each call must receive exactly the payload its own callback
			// carried, regardless of interleaving.
			assert.Equal(t, n, payload.Handle)
		}(uint32(i))
	}
	wg.Wait()
	assert.Zero(t, b.Pending())
}

func TestRegister_TokenNotReusedWhilePending(t *testing.T) {
	b := New()

	t1, _ := b.register("a")
	t2, _ := b.register("b")
	assert.NotEqual(t, t1, t2)

	// Completing a call frees its token for reuse; the pending one stays owned.
	b.Complete(t1, 0, AbsentPayload())
	t3, _ := b.register("c")
	assert.NotEqual(t, t2, t3)
}

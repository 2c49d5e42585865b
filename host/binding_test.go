package host

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-id/go-vcx/bridge"
	verrors "github.com/aviary-id/go-vcx/domain/errors"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/internal/fakenative"
)

// fakeOpener loads a fake surface for any path except those it is told to
// reject, and remembers the surfaces it handed out.
type fakeOpener struct {
	bad      map[string]bool
	surfaces []*fakenative.Surface
}

func (f *fakeOpener) open(path string, completer ports.Completer) (ports.Surface, error) {
	if f.bad[path] {
		return nil, fmt.Errorf("dlopen(%q): no such file", path)
	}
	s := fakenative.New(completer)
	f.surfaces = append(f.surfaces, s)
	return s, nil
}

func newTestBinding(t *testing.T) (*Binding, *bridge.Bridge, *fakeOpener) {
	t.Helper()
	opener := &fakeOpener{bad: map[string]bool{"/missing/libvcx.so": true}}
	calls := bridge.New()
	return NewBinding(calls, WithOpener(opener.open)), calls, opener
}

func TestBinding_OpenEmptyPath(t *testing.T) {
	b, _, _ := newTestBinding(t)

	err := b.Open("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &verrors.StructuredError{Kind: verrors.KindInvalidConfiguration}))
	assert.Equal(t, StateUninitialized, b.State())
}

func TestBinding_OpenUnreachablePath(t *testing.T) {
	b, _, _ := newTestBinding(t)

	err := b.Open("/missing/libvcx.so")
	require.Error(t, err)
	se, ok := verrors.AsStructured(err)
	require.True(t, ok)
	assert.Equal(t, verrors.KindInvalidConfiguration, se.Kind)
	assert.Contains(t, se.Message, "/missing/libvcx.so")
	assert.Equal(t, StateUninitialized, b.State())
}

func TestBinding_OpenIsIdempotentForSamePath(t *testing.T) {
	b, _, opener := newTestBinding(t)

	require.NoError(t, b.Open("/usr/lib/libvcx.so"))
	require.NoError(t, b.Open("/usr/lib/libvcx.so"))

	assert.Equal(t, StateReady, b.State())
	assert.Len(t, opener.surfaces, 1, "second open with the same path must not reload")
}

func TestBinding_RebindRequiresShutdown(t *testing.T) {
	b, _, _ := newTestBinding(t)

	require.NoError(t, b.Open("/usr/lib/libvcx.so"))
	err := b.Open("/opt/other/libvcx.so")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &verrors.StructuredError{Kind: verrors.KindInvalidConfiguration}))
	assert.Equal(t, "/usr/lib/libvcx.so", b.Path())
}

func TestBinding_RebindRejectedWhileCallsOutstanding(t *testing.T) {
	b, calls, _ := newTestBinding(t)
	require.NoError(t, b.Open("/usr/lib/libvcx.so"))

	// Park one call in flight by never completing it.
	started := make(chan bridge.Token, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_, _ = calls.Submit(ctx, "vcx_connection_create", func(token bridge.Token) bridge.Status {
			started <- token
			return 0
		})
	}()
	token := <-started

	err := b.Open("/opt/other/libvcx.so")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outstanding")

	calls.Complete(token, 0, bridge.HandlePayload(1))
}

func TestBinding_SurfaceGate(t *testing.T) {
	b, _, _ := newTestBinding(t)

	_, err := b.Surface("vcx_connection_create")
	require.Error(t, err)
	se, ok := verrors.AsStructured(err)
	require.True(t, ok)
	assert.Equal(t, verrors.KindNotInitialized, se.Kind)
	assert.Equal(t, "vcx_connection_create", se.NativeFunc)

	require.NoError(t, b.Open("/usr/lib/libvcx.so"))
	surface, err := b.Surface("vcx_connection_create")
	require.NoError(t, err)
	assert.NotNil(t, surface)
}

func TestBinding_ShutdownForwardsDeleteWallet(t *testing.T) {
	b, _, opener := newTestBinding(t)
	require.NoError(t, b.Open("/usr/lib/libvcx.so"))

	require.NoError(t, b.Shutdown(true))
	assert.Equal(t, StateUninitialized, b.State())

	require.Len(t, opener.surfaces, 1)
	assert.Equal(t, []bool{true}, opener.surfaces[0].Teardowns())
	assert.True(t, opener.surfaces[0].Closed())

	_, err := b.Surface("vcx_wallet_add_record")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &verrors.StructuredError{Kind: verrors.KindNotInitialized}))
}

func TestBinding_ShutdownWhenNotReady(t *testing.T) {
	b, _, _ := newTestBinding(t)

	err := b.Shutdown(false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &verrors.StructuredError{Kind: verrors.KindNotInitialized}))
}

func TestBinding_ReinitializeAfterShutdown(t *testing.T) {
	b, _, opener := newTestBinding(t)

	require.NoError(t, b.Open("/usr/lib/libvcx.so"))
	require.NoError(t, b.Shutdown(false))
	require.NoError(t, b.Open("/opt/other/libvcx.so"))

	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, "/opt/other/libvcx.so", b.Path())
	assert.Len(t, opener.surfaces, 2)
}

func TestBinding_OpenWiresMessageLookup(t *testing.T) {
	b, calls, opener := newTestBinding(t)
	require.NoError(t, b.Open("/usr/lib/libvcx.so"))

	opener.surfaces[0].SetMessage(1010, "invalid connection handle")
	opener.surfaces[0].Script("vcx_connection_serialize", fakenative.Behavior{Code: 1010})

	surface, err := b.Surface("vcx_connection_serialize")
	require.NoError(t, err)

	_, err = calls.Submit(context.Background(), "vcx_connection_serialize", func(token bridge.Token) bridge.Status {
		return surface.ConnectionSerialize(token, 5)
	})
	require.Error(t, err)
	se, ok := verrors.AsStructured(err)
	require.True(t, ok)
	assert.Equal(t, "invalid connection handle", se.Message)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "shutting_down", StateShuttingDown.String())
}

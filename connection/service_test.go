package connection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/entities"
	verrors "github.com/aviary-id/go-vcx/domain/errors"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/handles"
	"github.com/aviary-id/go-vcx/internal/fakenative"
	"github.com/aviary-id/go-vcx/internal/testutil"
)

type stubBinding struct {
	surface ports.Surface
	err     error
}

func (b stubBinding) Surface(op string) (ports.Surface, error) {
	return b.surface, b.err
}

func newTestService(t *testing.T) (*Service, *fakenative.Surface) {
	t.Helper()
	calls := bridge.New()
	surface := fakenative.New(calls)
	calls.SetMessageLookup(surface.ErrorMessage)
	registry := handles.NewRegistry(func(ctx context.Context, kind handles.Kind, id uint32) error {
		_, err := calls.Submit(ctx, "vcx_connection_release", func(token bridge.Token) bridge.Status {
			return surface.ConnectionRelease(token, id)
		})
		return err
	})
	return NewService(stubBinding{surface: surface}, calls, registry), surface
}

func TestCreateRegistersHandle(t *testing.T) {
	svc, surface := newTestService(t)
	surface.Script("vcx_connection_create", fakenative.Behavior{
		Payload: bridge.HandlePayload(42),
	})

	conn, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), conn)
}

func TestConnectReturnsInvitation(t *testing.T) {
	svc, surface := newTestService(t)
	surface.Script("vcx_connection_connect", fakenative.Behavior{
		Payload: bridge.StringPayload(`{"invite_details":{}}`),
	})

	conn, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	invite, err := svc.Connect(context.Background(), conn, entities.ConnectOptions{ConnectionType: "QR"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"invite_details":{}}`, invite)
}

func TestSerialize(t *testing.T) {
	svc, surface := newTestService(t)
	surface.Script("vcx_connection_serialize", fakenative.Behavior{
		Payload: bridge.StringPayload(`{"source_id":"alice"}`),
	})

	conn, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	state, err := svc.Serialize(context.Background(), conn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_id":"alice"}`, state)
}

func TestOperationsOnReleasedHandle(t *testing.T) {
	svc, _ := newTestService(t)

	conn, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, svc.Release(context.Background(), conn))

	_, err = svc.Connect(context.Background(), conn, entities.ConnectOptions{})
	testutil.RequireStructured(t, err, verrors.KindHandleReleased)

	_, err = svc.Serialize(context.Background(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, verrors.NewHandleReleased("vcx_connection_serialize", conn))
}

func TestUnknownHandleSurfacesNativeRejection(t *testing.T) {
	svc, surface := newTestService(t)
	surface.Script("vcx_connection_serialize", fakenative.Behavior{Code: 1067})
	surface.SetMessage(1067, "invalid connection handle")

	// The registry has never seen this id, so the liveness check passes and
	// the native layer's own rejection comes back through the callback.
	_, err := svc.Serialize(context.Background(), 9999)
	testutil.RequireCode(t, err, verrors.KindCallbackFailure, 1067)
}

func TestReleaseFailureStillMarksReleased(t *testing.T) {
	svc, surface := newTestService(t)
	surface.Script("vcx_connection_release", fakenative.Behavior{Code: 1067})
	surface.SetMessage(1067, "invalid connection handle")

	conn, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	err = svc.Release(context.Background(), conn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid connection handle")

	// The local state is final even when the native release reported failure.
	_, err = svc.Serialize(context.Background(), conn)
	testutil.RequireStructured(t, err, verrors.KindHandleReleased)
}

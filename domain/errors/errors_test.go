package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_SuccessCodeIsNil(t *testing.T) {
	assert.Nil(t, Translate(KindCallbackFailure, "vcx_connection_create", 0, nil))
}

func TestTranslate_NonZeroCode(t *testing.T) {
	lookup := func(code uint32) string {
		return fmt.Sprintf("native message for %d", code)
	}

	err := Translate(KindCallbackFailure, "vcx_connection_create", 1010, lookup)
	require.NotNil(t, err)
	assert.Equal(t, KindCallbackFailure, err.Kind)
	assert.Equal(t, uint32(1010), err.Code)
	assert.Equal(t, "vcx_connection_create", err.NativeFunc)
	assert.Equal(t, "native message for 1010", err.Message)
}

func TestTranslate_LookupFallback(t *testing.T) {
	tests := []struct {
		lookup MessageLookup
		name   string
	}{
		{name: "nil lookup", lookup: nil},
		{name: "empty result", lookup: func(uint32) string { return "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(KindSubmissionFailure, "vcx_agent_provision_async", 1, tt.lookup)
			require.NotNil(t, err)
			assert.Equal(t, "native error", err.Message)
		})
	}
}

func TestTranslate_SubmissionAndCallbackShareShape(t *testing.T) {
	sub := Translate(KindSubmissionFailure, "vcx_wallet_add_record", 1053, nil)
	cb := Translate(KindCallbackFailure, "vcx_wallet_add_record", 1053, nil)

	require.NotNil(t, sub)
	require.NotNil(t, cb)
	assert.Equal(t, sub.Code, cb.Code)
	assert.Equal(t, sub.NativeFunc, cb.NativeFunc)
	assert.Equal(t, sub.Message, cb.Message)
}

func TestStructuredError_Is(t *testing.T) {
	err := error(&StructuredError{Kind: KindNotInitialized, NativeFunc: "vcx_connection_create"})

	assert.True(t, stdErrors.Is(err, &StructuredError{Kind: KindNotInitialized}))
	assert.False(t, stdErrors.Is(err, &StructuredError{Kind: KindHandleReleased}))

	coded := error(&StructuredError{Kind: KindCallbackFailure, Code: 1067})
	assert.True(t, stdErrors.Is(coded, &StructuredError{Kind: KindCallbackFailure, Code: 1067}))
	assert.False(t, stdErrors.Is(coded, &StructuredError{Kind: KindCallbackFailure, Code: 1}))
}

func TestStructuredError_ErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "native failure",
			err:  &StructuredError{Kind: KindCallbackFailure, NativeFunc: "vcx_shutdown", Code: 1, Message: "unknown error"},
			want: "callback_failure: vcx_shutdown failed with code 1: unknown error",
		},
		{
			name: "sdk-side gate",
			err:  NewNotInitialized("vcx_connection_create"),
			want: "not_initialized: vcx_connection_create: runtime binding is not ready",
		},
		{
			name: "configuration",
			err:  NewInvalidConfiguration("library path is empty"),
			want: "invalid_configuration: library path is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAsStructured(t *testing.T) {
	inner := NewHandleReleased("vcx_connection_serialize", 42)
	wrapped := fmt.Errorf("serialize: %w", inner)

	got, ok := AsStructured(wrapped)
	require.True(t, ok)
	assert.Equal(t, inner, got)

	_, ok = AsStructured(stdErrors.New("plain"))
	assert.False(t, ok)
}

// Package testutil provides common test assertions for SDK tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/aviary-id/go-vcx/domain/errors"
)

// RequireStructured asserts err carries a StructuredError of the given kind
// and returns it for further field checks.
func RequireStructured(t *testing.T, err error, kind verrors.Kind) *verrors.StructuredError {
	t.Helper()
	require.Error(t, err)
	structured, ok := verrors.AsStructured(err)
	require.True(t, ok, "expected a structured error, got %T: %v", err, err)
	assert.Equal(t, kind, structured.Kind)
	return structured
}

// RequireCode asserts err is a structured native failure of the given kind
// carrying the given native code.
func RequireCode(t *testing.T, err error, kind verrors.Kind, code uint32) *verrors.StructuredError {
	t.Helper()
	structured := RequireStructured(t, err, kind)
	assert.Equal(t, code, structured.Code)
	return structured
}

//go:build !linux || !cgo

// Package native is the cgo adapter for the native call surface. This stub
// keeps non-cgo builds compiling; loading a library always fails, and tests
// exercise the SDK through injected fakes instead.
package native

import (
	"fmt"
	"runtime"

	"github.com/aviary-id/go-vcx/domain/ports"
)

// Open always fails: the native adapter requires cgo on linux.
func Open(path string, completer ports.Completer) (ports.Surface, error) {
	return nil, fmt.Errorf("native library loading is not supported on %s without cgo", runtime.GOOS)
}

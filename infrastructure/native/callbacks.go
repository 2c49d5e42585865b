//go:build linux && cgo

package native

// The completion trampolines live in their own file because a preamble in a
// file with //export directives may hold declarations only.

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/aviary-id/go-vcx/bridge"
	vcxlog "github.com/aviary-id/go-vcx/log"
)

// vcxCompleteNone handles callbacks of shape (token, code).
//
//export vcxCompleteNone
func vcxCompleteNone(token C.uint32_t, code C.uint32_t) {
	deliver(bridge.Token(token), uint32(code), bridge.AbsentPayload())
}

// vcxCompleteHandle handles callbacks of shape (token, code, handle).
//
//export vcxCompleteHandle
func vcxCompleteHandle(token C.uint32_t, code C.uint32_t, result C.uint32_t) {
	deliver(bridge.Token(token), uint32(code), bridge.HandlePayload(uint32(result)))
}

// vcxCompleteString handles callbacks of shape (token, code, string). The
// native string is only valid for the duration of the callback; it is copied
// into Go memory before the completion is published to the waiting task.
//
//export vcxCompleteString
func vcxCompleteString(token C.uint32_t, code C.uint32_t, result *C.char) {
	payload := bridge.AbsentPayload()
	if result != nil {
		payload = bridge.StringPayload(C.GoString(result))
	} else if code == 0 {
		payload = bridge.StringPayload("")
	}
	deliver(bridge.Token(token), uint32(code), payload)
}

// vcxLogLine receives the native logging callback. Strings are copied before
// the callback returns; the native layer owns the originals.
//
//export vcxLogLine
func vcxLogLine(ctx unsafe.Pointer, level C.uint32_t, target *C.char, message *C.char, modulePath *C.char, file *C.char, line C.uint32_t) {
	rec := vcxlog.Record{Level: uint32(level), Line: uint32(line)}
	if target != nil {
		rec.Target = C.GoString(target)
	}
	if message != nil {
		rec.Message = C.GoString(message)
	}
	if file != nil {
		rec.File = C.GoString(file)
	}
	routeLog(rec)
}

// Package vcx is a Go SDK for a C-ABI credential-exchange agent library.
//
// The native library is callback-based: every operation takes a correlation
// token and a completion callback and returns an immediate status. This SDK
// bridges that convention into ordinary request/response Go calls - submit a
// call, await its single completion - while managing the lifetime of every
// resource that must stay valid until the callback fires.
//
// Typical usage:
//
//	client := vcx.New()
//	if err := client.Open(vcx.Config{LibraryPath: "/usr/lib/libvcx.so"}); err != nil {
//		// ...
//	}
//	defer client.Shutdown(false)
//
//	conn, err := client.Connections().Create(ctx, "alice")
package vcx

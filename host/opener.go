package host

import (
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/infrastructure/native"
)

// defaultOpener binds through the cgo adapter. Non-cgo builds get its stub,
// which fails every load with a descriptive error.
var defaultOpener ports.Opener = native.Open

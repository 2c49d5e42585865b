package ports

import (
	"github.com/aviary-id/go-vcx/bridge"
)

// Completer receives completion callbacks from the native layer. The bridge
// implements it; surface implementations deliver every callback through it,
// from whatever thread the native library chooses.
type Completer interface {
	Complete(token bridge.Token, code uint32, payload bridge.Payload)
}

// Surface is the typed declaration of the native entry points. Every
// asynchronous method submits a call under the given correlation token and
// returns the native layer's immediate status; the matching completion is
// delivered to the Completer the implementation was constructed with.
//
// The callback payload shape is fixed per entry point: create-style calls
// complete with a handle, serialize/fetch-style calls with a string, and
// mutation-style calls with no result fields.
type Surface interface {
	// Agent provisioning.
	ProvisionAgent(token bridge.Token, config string) bridge.Status // completes with string
	UpdateAgentInfo(token bridge.Token, config string) bridge.Status // completes absent

	// Connection establishment.
	ConnectionCreate(token bridge.Token, sourceID string) bridge.Status             // completes with handle
	ConnectionConnect(token bridge.Token, connection uint32, options string) bridge.Status // completes with string
	ConnectionSerialize(token bridge.Token, connection uint32) bridge.Status        // completes with string
	ConnectionRelease(token bridge.Token, connection uint32) bridge.Status          // completes absent

	// Credential exchange.
	CredentialCreateWithOffer(token bridge.Token, sourceID, offer string) bridge.Status // completes with handle
	CredentialSendRequest(token bridge.Token, credential, connection uint32) bridge.Status // completes absent
	CredentialGetOffers(token bridge.Token, connection uint32) bridge.Status              // completes with string
	CredentialRelease(token bridge.Token, credential uint32) bridge.Status               // completes absent

	// Proof presentation.
	ProofCreateWithRequest(token bridge.Token, sourceID, request string) bridge.Status // completes with handle
	ProofSendPresentation(token bridge.Token, proof, connection uint32) bridge.Status  // completes absent
	ProofRelease(token bridge.Token, proof uint32) bridge.Status                       // completes absent

	// Wallet record CRUD and search.
	WalletAddRecord(token bridge.Token, recordType, recordID, value, tags string) bridge.Status // completes absent
	WalletGetRecord(token bridge.Token, recordType, recordID, options string) bridge.Status     // completes with string
	WalletUpdateRecordValue(token bridge.Token, recordType, recordID, value string) bridge.Status // completes absent
	WalletDeleteRecord(token bridge.Token, recordType, recordID string) bridge.Status           // completes absent
	WalletOpenSearch(token bridge.Token, recordType, query, options string) bridge.Status       // completes with handle
	WalletSearchNextRecords(token bridge.Token, search uint32, count uint32) bridge.Status      // completes with string
	WalletCloseSearch(token bridge.Token, search uint32) bridge.Status                          // completes absent

	// ErrorMessage resolves a native error code to its message. Synchronous
	// and best-effort: a failed lookup yields an empty string, never an error.
	ErrorMessage(code uint32) string

	// Teardown instructs the native layer to release its global state.
	// Synchronous; deleteWallet is forwarded verbatim.
	Teardown(deleteWallet bool) bridge.Status

	// Close unloads the native library. The surface must not be used after.
	Close() error
}

// Opener loads the native library at path and binds its entry points.
// The returned surface delivers completions to completer. A missing file or
// unresolvable symbol is a load error; the runtime binding maps it to
// InvalidConfiguration.
type Opener func(path string, completer Completer) (Surface, error)

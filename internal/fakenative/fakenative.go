// Package fakenative provides a scripted in-memory implementation of the
// native call surface. Tests script per-entry-point behavior - immediate
// status, callback code, callback payload - and the fake invokes the
// completion trampoline from its own goroutine, mimicking the native thread
// pool.
package fakenative

import (
	"sync"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/ports"
)

// Behavior scripts one native entry point.
type Behavior struct {
	// Payload is delivered by the callback on success. Ignored when Status
	// or Code is non-zero.
	Payload bridge.Payload

	// Status is returned immediately from the submit call. Non-zero means
	// the callback never fires.
	Status bridge.Status

	// Code is the error code delivered by the callback.
	Code uint32

	// Drop accepts the submission but never invokes the callback,
	// simulating a native call that goes silent.
	Drop bool
}

// Surface is a scripted ports.Surface. The zero behavior for an unscripted
// entry point is success with a shape-appropriate payload.
type Surface struct {
	completer  ports.Completer
	behaviors  map[string]Behavior
	messages   map[uint32]string
	callLog    []string
	teardowns  []bool
	mu         sync.Mutex
	nextHandle uint32
	closed     bool
}

var _ ports.Surface = (*Surface)(nil)

// New creates a Surface delivering completions to completer.
func New(completer ports.Completer) *Surface {
	return &Surface{
		completer:  completer,
		behaviors:  make(map[string]Behavior),
		messages:   make(map[uint32]string),
		nextHandle: 100,
	}
}

// Script installs a behavior for a native entry point by name.
func (s *Surface) Script(fn string, b Behavior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.behaviors[fn] = b
}

// SetMessage installs a code-to-message mapping served by ErrorMessage.
func (s *Surface) SetMessage(code uint32, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[code] = msg
}

// Calls returns the names of entry points invoked, in order.
func (s *Surface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.callLog))
	copy(out, s.callLog)
	return out
}

// Teardowns returns the deleteWallet flags of recorded teardown calls.
func (s *Surface) Teardowns() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.teardowns))
	copy(out, s.teardowns)
	return out
}

// Closed reports whether Close was called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// dispatch runs the scripted behavior for fn, falling back to success with
// fallback as the payload.
func (s *Surface) dispatch(fn string, token bridge.Token, fallback bridge.Payload) bridge.Status {
	s.mu.Lock()
	s.callLog = append(s.callLog, fn)
	b, scripted := s.behaviors[fn]
	s.mu.Unlock()

	if !scripted {
		b = Behavior{Payload: fallback}
	}
	if b.Status != 0 {
		return b.Status
	}
	if b.Drop {
		return 0
	}

	payload := b.Payload
	if b.Code != 0 {
		payload = bridge.AbsentPayload()
	}
	go s.completer.Complete(token, b.Code, payload)
	return 0
}

func (s *Surface) mintHandle() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	return s.nextHandle
}

func (s *Surface) ProvisionAgent(token bridge.Token, config string) bridge.Status {
	return s.dispatch("vcx_agent_provision_async", token, bridge.StringPayload("{}"))
}

func (s *Surface) UpdateAgentInfo(token bridge.Token, config string) bridge.Status {
	return s.dispatch("vcx_agent_update_info", token, bridge.AbsentPayload())
}

func (s *Surface) ConnectionCreate(token bridge.Token, sourceID string) bridge.Status {
	return s.dispatch("vcx_connection_create", token, bridge.HandlePayload(s.mintHandle()))
}

func (s *Surface) ConnectionConnect(token bridge.Token, connection uint32, options string) bridge.Status {
	return s.dispatch("vcx_connection_connect", token, bridge.StringPayload("{}"))
}

func (s *Surface) ConnectionSerialize(token bridge.Token, connection uint32) bridge.Status {
	return s.dispatch("vcx_connection_serialize", token, bridge.StringPayload("{}"))
}

func (s *Surface) ConnectionRelease(token bridge.Token, connection uint32) bridge.Status {
	return s.dispatch("vcx_connection_release", token, bridge.AbsentPayload())
}

func (s *Surface) CredentialCreateWithOffer(token bridge.Token, sourceID, offer string) bridge.Status {
	return s.dispatch("vcx_credential_create_with_offer", token, bridge.HandlePayload(s.mintHandle()))
}

func (s *Surface) CredentialSendRequest(token bridge.Token, credential, connection uint32) bridge.Status {
	return s.dispatch("vcx_credential_send_request", token, bridge.AbsentPayload())
}

func (s *Surface) CredentialGetOffers(token bridge.Token, connection uint32) bridge.Status {
	return s.dispatch("vcx_credential_get_offers", token, bridge.StringPayload("[]"))
}

func (s *Surface) CredentialRelease(token bridge.Token, credential uint32) bridge.Status {
	return s.dispatch("vcx_credential_release", token, bridge.AbsentPayload())
}

func (s *Surface) ProofCreateWithRequest(token bridge.Token, sourceID, request string) bridge.Status {
	return s.dispatch("vcx_disclosed_proof_create_with_request", token, bridge.HandlePayload(s.mintHandle()))
}

func (s *Surface) ProofSendPresentation(token bridge.Token, proof, connection uint32) bridge.Status {
	return s.dispatch("vcx_disclosed_proof_send_proof", token, bridge.AbsentPayload())
}

func (s *Surface) ProofRelease(token bridge.Token, proof uint32) bridge.Status {
	return s.dispatch("vcx_disclosed_proof_release", token, bridge.AbsentPayload())
}

func (s *Surface) WalletAddRecord(token bridge.Token, recordType, recordID, value, tags string) bridge.Status {
	return s.dispatch("vcx_wallet_add_record", token, bridge.AbsentPayload())
}

func (s *Surface) WalletGetRecord(token bridge.Token, recordType, recordID, options string) bridge.Status {
	return s.dispatch("vcx_wallet_get_record", token, bridge.StringPayload("{}"))
}

func (s *Surface) WalletUpdateRecordValue(token bridge.Token, recordType, recordID, value string) bridge.Status {
	return s.dispatch("vcx_wallet_update_record_value", token, bridge.AbsentPayload())
}

func (s *Surface) WalletDeleteRecord(token bridge.Token, recordType, recordID string) bridge.Status {
	return s.dispatch("vcx_wallet_delete_record", token, bridge.AbsentPayload())
}

func (s *Surface) WalletOpenSearch(token bridge.Token, recordType, query, options string) bridge.Status {
	return s.dispatch("vcx_wallet_open_search", token, bridge.HandlePayload(s.mintHandle()))
}

func (s *Surface) WalletSearchNextRecords(token bridge.Token, search uint32, count uint32) bridge.Status {
	return s.dispatch("vcx_wallet_search_next_records", token, bridge.StringPayload(`{"records":[]}`))
}

func (s *Surface) WalletCloseSearch(token bridge.Token, search uint32) bridge.Status {
	return s.dispatch("vcx_wallet_close_search", token, bridge.AbsentPayload())
}

func (s *Surface) ErrorMessage(code uint32) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[code]
}

func (s *Surface) Teardown(deleteWallet bool) bridge.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, deleteWallet)
	return 0
}

func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

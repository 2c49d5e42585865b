//go:build linux && cgo

// Package native is the cgo adapter for the native call surface. It loads the
// shared library with dlopen, resolves every required entry point with dlsym,
// and hands each asynchronous call a fixed exported trampoline matching its
// callback shape. Completions are forwarded to the bridge from whatever
// thread the native layer invokes them on.
package native

/*
#cgo LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

static void* vcx_dlopen(const char* path) {
	return dlopen(path, RTLD_LAZY | RTLD_LOCAL);
}
static const char* vcx_dlerror(void) {
	return dlerror();
}
static void* vcx_dlsym_clear(void* h, const char* name, char** err) {
	dlerror();
	void* p = dlsym(h, name);
	char* e = dlerror();
	if (e) { if (err) *err = e; return NULL; }
	if (err) *err = NULL;
	return p;
}
static int vcx_dlclose(void* h) {
	return dlclose(h);
}

// Native entry point signatures, grouped by argument shape. Every async entry
// point takes a correlation token first and a completion callback last, and
// returns an immediate status.
typedef uint32_t (*vcx_fn_s)(uint32_t, const char*, void*);
typedef uint32_t (*vcx_fn_ss)(uint32_t, const char*, const char*, void*);
typedef uint32_t (*vcx_fn_sss)(uint32_t, const char*, const char*, const char*, void*);
typedef uint32_t (*vcx_fn_ssss)(uint32_t, const char*, const char*, const char*, const char*, void*);
typedef uint32_t (*vcx_fn_u)(uint32_t, uint32_t, void*);
typedef uint32_t (*vcx_fn_us)(uint32_t, uint32_t, const char*, void*);
typedef uint32_t (*vcx_fn_uu)(uint32_t, uint32_t, uint32_t, void*);
typedef uint32_t (*vcx_fn_shutdown)(unsigned int);
typedef const char* (*vcx_fn_message)(uint32_t);

static uint32_t vcx_call_s(void* f, uint32_t t, const char* a, void* cb) {
	return ((vcx_fn_s)f)(t, a, cb);
}
static uint32_t vcx_call_ss(void* f, uint32_t t, const char* a, const char* b, void* cb) {
	return ((vcx_fn_ss)f)(t, a, b, cb);
}
static uint32_t vcx_call_sss(void* f, uint32_t t, const char* a, const char* b, const char* c, void* cb) {
	return ((vcx_fn_sss)f)(t, a, b, c, cb);
}
static uint32_t vcx_call_ssss(void* f, uint32_t t, const char* a, const char* b, const char* c, const char* d, void* cb) {
	return ((vcx_fn_ssss)f)(t, a, b, c, d, cb);
}
static uint32_t vcx_call_u(void* f, uint32_t t, uint32_t a, void* cb) {
	return ((vcx_fn_u)f)(t, a, cb);
}
static uint32_t vcx_call_us(void* f, uint32_t t, uint32_t a, const char* b, void* cb) {
	return ((vcx_fn_us)f)(t, a, b, cb);
}
static uint32_t vcx_call_uu(void* f, uint32_t t, uint32_t a, uint32_t b, void* cb) {
	return ((vcx_fn_uu)f)(t, a, b, cb);
}
static uint32_t vcx_call_shutdown(void* f, unsigned int del) {
	return ((vcx_fn_shutdown)f)(del);
}
typedef uint32_t (*vcx_fn_set_logger)(const void*, void*, void*, void*);
static uint32_t vcx_call_set_logger(void* f, void* log_cb) {
	return ((vcx_fn_set_logger)f)(0, 0, log_cb, 0);
}
static const char* vcx_call_message(void* f, uint32_t code) {
	return ((vcx_fn_message)f)(code);
}

// Trampoline addresses, defined in callbacks.go via //export.
extern void vcxCompleteNone(uint32_t token, uint32_t code);
extern void vcxCompleteHandle(uint32_t token, uint32_t code, uint32_t result);
extern void vcxCompleteString(uint32_t token, uint32_t code, const char* result);
extern void vcxLogLine(const void* context, uint32_t level, const char* target, const char* message, const char* module_path, const char* file, uint32_t line);

static void* vcx_cb_none(void)   { return (void*)vcxCompleteNone; }
static void* vcx_cb_handle(void) { return (void*)vcxCompleteHandle; }
static void* vcx_cb_string(void) { return (void*)vcxCompleteString; }
static void* vcx_cb_log(void)    { return (void*)vcxLogLine; }
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/ports"
	vcxlog "github.com/aviary-id/go-vcx/log"
)

// dlerr returns the last dlerror as a Go string, or a fallback label.
func dlerr() string {
	if errC := C.vcx_dlerror(); errC != nil {
		return C.GoString(errC)
	}
	return "unknown dlerror"
}

// symChecked resolves a symbol or returns an error with dlerror detail.
func symChecked(lib unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p := C.vcx_dlsym_clear(lib, cs, &cerr)
	if cerr != nil {
		return nil, fmt.Errorf("dlsym(%q) failed: %s", name, C.GoString(cerr))
	}
	return p, nil
}

// symbols holds the resolved entry points. A binding is unusable unless every
// one of them resolved, so the set doubles as the load-time link check.
type symbols struct {
	agentProvision          unsafe.Pointer
	agentUpdateInfo         unsafe.Pointer
	connectionCreate        unsafe.Pointer
	connectionConnect       unsafe.Pointer
	connectionSerialize     unsafe.Pointer
	connectionRelease       unsafe.Pointer
	credentialCreate        unsafe.Pointer
	credentialSendRequest   unsafe.Pointer
	credentialGetOffers     unsafe.Pointer
	credentialRelease       unsafe.Pointer
	proofCreate             unsafe.Pointer
	proofSendPresentation   unsafe.Pointer
	proofRelease            unsafe.Pointer
	walletAddRecord         unsafe.Pointer
	walletGetRecord         unsafe.Pointer
	walletUpdateRecordValue unsafe.Pointer
	walletDeleteRecord      unsafe.Pointer
	walletOpenSearch        unsafe.Pointer
	walletSearchNext        unsafe.Pointer
	walletCloseSearch       unsafe.Pointer
	shutdown                unsafe.Pointer
	errorMessage            unsafe.Pointer
}

// Surface is the loaded native library.
type Surface struct {
	completer ports.Completer
	lib       unsafe.Pointer
	syms      symbols
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Surface = (*Surface)(nil)

// active is the surface the exported trampolines deliver to. The runtime
// binding holds a single process-wide surface, so a lone slot suffices; a
// callback arriving with no active surface is a stale completion from a
// library that was already unloaded.
var (
	activeMu sync.RWMutex
	active   *Surface
)

// logRouter receives the native library's log callback traffic.
var (
	logMu     sync.RWMutex
	logRouter = vcxlog.NewRouter()
)

// SetLogRouter replaces the router used for native log lines. Call before
// Open; the native layer caches the callback it was registered with, not the
// router behind it, so swapping routers later is safe.
func SetLogRouter(r *vcxlog.Router) {
	if r == nil {
		return
	}
	logMu.Lock()
	logRouter = r
	logMu.Unlock()
}

func routeLog(rec vcxlog.Record) {
	logMu.RLock()
	r := logRouter
	logMu.RUnlock()
	r.Route(rec)
}

// Open loads the shared library at path and resolves every required entry
// point. A missing file or unresolvable symbol fails the load.
func Open(path string, completer ports.Completer) (ports.Surface, error) {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	lib := C.vcx_dlopen(cs)
	if lib == nil {
		return nil, fmt.Errorf("dlopen(%q) failed: %s", path, dlerr())
	}

	s := &Surface{completer: completer, lib: unsafe.Pointer(lib)}
	for _, bind := range []struct {
		slot *unsafe.Pointer
		name string
	}{
		{&s.syms.agentProvision, "vcx_agent_provision_async"},
		{&s.syms.agentUpdateInfo, "vcx_agent_update_info"},
		{&s.syms.connectionCreate, "vcx_connection_create"},
		{&s.syms.connectionConnect, "vcx_connection_connect"},
		{&s.syms.connectionSerialize, "vcx_connection_serialize"},
		{&s.syms.connectionRelease, "vcx_connection_release"},
		{&s.syms.credentialCreate, "vcx_credential_create_with_offer"},
		{&s.syms.credentialSendRequest, "vcx_credential_send_request"},
		{&s.syms.credentialGetOffers, "vcx_credential_get_offers"},
		{&s.syms.credentialRelease, "vcx_credential_release"},
		{&s.syms.proofCreate, "vcx_disclosed_proof_create_with_request"},
		{&s.syms.proofSendPresentation, "vcx_disclosed_proof_send_proof"},
		{&s.syms.proofRelease, "vcx_disclosed_proof_release"},
		{&s.syms.walletAddRecord, "vcx_wallet_add_record"},
		{&s.syms.walletGetRecord, "vcx_wallet_get_record"},
		{&s.syms.walletUpdateRecordValue, "vcx_wallet_update_record_value"},
		{&s.syms.walletDeleteRecord, "vcx_wallet_delete_record"},
		{&s.syms.walletOpenSearch, "vcx_wallet_open_search"},
		{&s.syms.walletSearchNext, "vcx_wallet_search_next_records"},
		{&s.syms.walletCloseSearch, "vcx_wallet_close_search"},
		{&s.syms.shutdown, "vcx_shutdown"},
		{&s.syms.errorMessage, "vcx_error_c_message"},
	} {
		p, err := symChecked(s.lib, bind.name)
		if err != nil {
			C.vcx_dlclose(lib)
			return nil, err
		}
		*bind.slot = p
	}

	// The logging hook is optional: older library builds do not export it.
	if p, err := symChecked(s.lib, "vcx_set_logger"); err == nil {
		C.vcx_call_set_logger(p, C.vcx_cb_log())
	}

	activeMu.Lock()
	active = s
	activeMu.Unlock()
	return s, nil
}

// deliver forwards a trampoline invocation to the active surface's completer.
func deliver(token bridge.Token, code uint32, payload bridge.Payload) {
	activeMu.RLock()
	s := active
	activeMu.RUnlock()
	if s == nil {
		return
	}
	s.completer.Complete(token, code, payload)
}

// cstr allocates a C copy of the string, kept alive for the duration of the
// synchronous submit call only; the native layer copies what it needs before
// returning its immediate status.
func cstr(s string) *C.char { return C.CString(s) }

func (s *Surface) ProvisionAgent(token bridge.Token, config string) bridge.Status {
	c := cstr(config)
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_s(s.syms.agentProvision, C.uint32_t(token), c, C.vcx_cb_string()))
}

func (s *Surface) UpdateAgentInfo(token bridge.Token, config string) bridge.Status {
	c := cstr(config)
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_s(s.syms.agentUpdateInfo, C.uint32_t(token), c, C.vcx_cb_none()))
}

func (s *Surface) ConnectionCreate(token bridge.Token, sourceID string) bridge.Status {
	c := cstr(sourceID)
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_s(s.syms.connectionCreate, C.uint32_t(token), c, C.vcx_cb_handle()))
}

func (s *Surface) ConnectionConnect(token bridge.Token, connection uint32, options string) bridge.Status {
	c := cstr(options)
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_us(s.syms.connectionConnect, C.uint32_t(token), C.uint32_t(connection), c, C.vcx_cb_string()))
}

func (s *Surface) ConnectionSerialize(token bridge.Token, connection uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.connectionSerialize, C.uint32_t(token), C.uint32_t(connection), C.vcx_cb_string()))
}

func (s *Surface) ConnectionRelease(token bridge.Token, connection uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.connectionRelease, C.uint32_t(token), C.uint32_t(connection), C.vcx_cb_none()))
}

func (s *Surface) CredentialCreateWithOffer(token bridge.Token, sourceID, offer string) bridge.Status {
	a, b := cstr(sourceID), cstr(offer)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	return bridge.Status(C.vcx_call_ss(s.syms.credentialCreate, C.uint32_t(token), a, b, C.vcx_cb_handle()))
}

func (s *Surface) CredentialSendRequest(token bridge.Token, credential, connection uint32) bridge.Status {
	return bridge.Status(C.vcx_call_uu(s.syms.credentialSendRequest, C.uint32_t(token), C.uint32_t(credential), C.uint32_t(connection), C.vcx_cb_none()))
}

func (s *Surface) CredentialGetOffers(token bridge.Token, connection uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.credentialGetOffers, C.uint32_t(token), C.uint32_t(connection), C.vcx_cb_string()))
}

func (s *Surface) CredentialRelease(token bridge.Token, credential uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.credentialRelease, C.uint32_t(token), C.uint32_t(credential), C.vcx_cb_none()))
}

func (s *Surface) ProofCreateWithRequest(token bridge.Token, sourceID, request string) bridge.Status {
	a, b := cstr(sourceID), cstr(request)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	return bridge.Status(C.vcx_call_ss(s.syms.proofCreate, C.uint32_t(token), a, b, C.vcx_cb_handle()))
}

func (s *Surface) ProofSendPresentation(token bridge.Token, proof, connection uint32) bridge.Status {
	return bridge.Status(C.vcx_call_uu(s.syms.proofSendPresentation, C.uint32_t(token), C.uint32_t(proof), C.uint32_t(connection), C.vcx_cb_none()))
}

func (s *Surface) ProofRelease(token bridge.Token, proof uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.proofRelease, C.uint32_t(token), C.uint32_t(proof), C.vcx_cb_none()))
}

func (s *Surface) WalletAddRecord(token bridge.Token, recordType, recordID, value, tags string) bridge.Status {
	a, b, c, d := cstr(recordType), cstr(recordID), cstr(value), cstr(tags)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	defer C.free(unsafe.Pointer(c))
	defer C.free(unsafe.Pointer(d))
	return bridge.Status(C.vcx_call_ssss(s.syms.walletAddRecord, C.uint32_t(token), a, b, c, d, C.vcx_cb_none()))
}

func (s *Surface) WalletGetRecord(token bridge.Token, recordType, recordID, options string) bridge.Status {
	a, b, c := cstr(recordType), cstr(recordID), cstr(options)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_sss(s.syms.walletGetRecord, C.uint32_t(token), a, b, c, C.vcx_cb_string()))
}

func (s *Surface) WalletUpdateRecordValue(token bridge.Token, recordType, recordID, value string) bridge.Status {
	a, b, c := cstr(recordType), cstr(recordID), cstr(value)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_sss(s.syms.walletUpdateRecordValue, C.uint32_t(token), a, b, c, C.vcx_cb_none()))
}

func (s *Surface) WalletDeleteRecord(token bridge.Token, recordType, recordID string) bridge.Status {
	a, b := cstr(recordType), cstr(recordID)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	return bridge.Status(C.vcx_call_ss(s.syms.walletDeleteRecord, C.uint32_t(token), a, b, C.vcx_cb_none()))
}

func (s *Surface) WalletOpenSearch(token bridge.Token, recordType, query, options string) bridge.Status {
	a, b, c := cstr(recordType), cstr(query), cstr(options)
	defer C.free(unsafe.Pointer(a))
	defer C.free(unsafe.Pointer(b))
	defer C.free(unsafe.Pointer(c))
	return bridge.Status(C.vcx_call_sss(s.syms.walletOpenSearch, C.uint32_t(token), a, b, c, C.vcx_cb_handle()))
}

func (s *Surface) WalletSearchNextRecords(token bridge.Token, search uint32, count uint32) bridge.Status {
	return bridge.Status(C.vcx_call_uu(s.syms.walletSearchNext, C.uint32_t(token), C.uint32_t(search), C.uint32_t(count), C.vcx_cb_string()))
}

func (s *Surface) WalletCloseSearch(token bridge.Token, search uint32) bridge.Status {
	return bridge.Status(C.vcx_call_u(s.syms.walletCloseSearch, C.uint32_t(token), C.uint32_t(search), C.vcx_cb_none()))
}

// ErrorMessage resolves an error code through the native lookup. The native
// string is static storage; copy and return. A nil result maps to the empty
// fallback, never a second error.
func (s *Surface) ErrorMessage(code uint32) string {
	p := C.vcx_call_message(s.syms.errorMessage, C.uint32_t(code))
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

// Teardown invokes the native global teardown.
func (s *Surface) Teardown(deleteWallet bool) bridge.Status {
	del := C.uint(0)
	if deleteWallet {
		del = 1
	}
	return bridge.Status(C.vcx_call_shutdown(s.syms.shutdown, del))
}

// Close detaches the surface from the trampolines and unloads the library.
// Idempotent.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		activeMu.Lock()
		if active == s {
			active = nil
		}
		activeMu.Unlock()
		if C.vcx_dlclose(s.lib) != 0 {
			s.closeErr = fmt.Errorf("dlclose failed: %s", dlerr())
		}
	})
	return s.closeErr
}

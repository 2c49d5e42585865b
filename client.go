package vcx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aviary-id/go-vcx/agency"
	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/connection"
	"github.com/aviary-id/go-vcx/credential"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/handles"
	"github.com/aviary-id/go-vcx/host"
	"github.com/aviary-id/go-vcx/internal/decode"
	"github.com/aviary-id/go-vcx/wallet"
)

// Client is the top-level SDK facade. It wires the callback bridge, the
// runtime binding, and the handle registry together and exposes the domain
// services built on them. A Client is safe for concurrent use.
type Client struct {
	calls    *bridge.Bridge
	binding  *host.Binding
	registry *handles.Registry

	agency      *agency.Service
	connections *connection.Service
	credentials *credential.Service
	wallet      *wallet.Service

	log *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	log    *slog.Logger
	opener ports.Opener
}

// WithLogger sets the logger used across the bridge and the runtime binding.
func WithLogger(log *slog.Logger) Option {
	return func(c *clientConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithOpener replaces the native library opener. Tests inject an opener
// returning a scripted surface.
func WithOpener(open ports.Opener) Option {
	return func(c *clientConfig) {
		if open != nil {
			c.opener = open
		}
	}
}

// New creates a Client. The client holds no native resources until Open.
func New(opts ...Option) *Client {
	cfg := clientConfig{log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	calls := bridge.New(bridge.WithLogger(cfg.log))

	bindingOpts := []host.Option{host.WithLogger(cfg.log)}
	if cfg.opener != nil {
		bindingOpts = append(bindingOpts, host.WithOpener(cfg.opener))
	}
	binding := host.NewBinding(calls, bindingOpts...)

	c := &Client{
		calls:   calls,
		binding: binding,
		log:     cfg.log,
	}
	c.registry = handles.NewRegistry(c.releaseHandle)

	c.agency = agency.NewService(binding, calls)
	c.connections = connection.NewService(binding, calls, c.registry)
	c.credentials = credential.NewService(binding, calls, c.registry)
	c.wallet = wallet.NewService(binding, calls, c.registry)
	return c
}

// Open validates cfg and binds the native library it points at. Opening an
// already-open client with the same path is a no-op.
func (c *Client) Open(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return c.binding.Open(cfg.LibraryPath)
}

// Shutdown tears down the native layer's global state and unloads the
// library. When deleteWallet is true the local wallet is destroyed with it.
// The client may be re-opened afterwards.
func (c *Client) Shutdown(deleteWallet bool) error {
	return c.binding.Shutdown(deleteWallet)
}

// Agency returns the agent provisioning service.
func (c *Client) Agency() *agency.Service { return c.agency }

// Connections returns the connection establishment service.
func (c *Client) Connections() *connection.Service { return c.connections }

// Credentials returns the credential and proof exchange service.
func (c *Client) Credentials() *credential.Service { return c.credentials }

// Wallet returns the wallet record service.
func (c *Client) Wallet() *wallet.Service { return c.wallet }

// Handles returns the handle registry, exposing release and liveness checks
// by raw handle id.
func (c *Client) Handles() *handles.Registry { return c.registry }

// releaseHandle dispatches a registry release to the native release entry
// point matching the handle's kind.
func (c *Client) releaseHandle(ctx context.Context, kind handles.Kind, id uint32) error {
	var op string
	var invoke func(ports.Surface, bridge.Token) bridge.Status
	switch kind {
	case handles.KindConnection:
		op = "vcx_connection_release"
		invoke = func(s ports.Surface, t bridge.Token) bridge.Status { return s.ConnectionRelease(t, id) }
	case handles.KindCredential:
		op = "vcx_credential_release"
		invoke = func(s ports.Surface, t bridge.Token) bridge.Status { return s.CredentialRelease(t, id) }
	case handles.KindProof:
		op = "vcx_disclosed_proof_release"
		invoke = func(s ports.Surface, t bridge.Token) bridge.Status { return s.ProofRelease(t, id) }
	case handles.KindSearch:
		op = "vcx_wallet_close_search"
		invoke = func(s ports.Surface, t bridge.Token) bridge.Status { return s.WalletCloseSearch(t, id) }
	default:
		return fmt.Errorf("unknown handle kind %q", kind)
	}

	surface, err := c.binding.Surface(op)
	if err != nil {
		return err
	}
	payload, err := c.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return invoke(surface, token)
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

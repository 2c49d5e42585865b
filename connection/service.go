// Package connection exposes connection establishment over the native layer.
// A connection is a native handle from creation until released.
package connection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/entities"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/handles"
	"github.com/aviary-id/go-vcx/internal/decode"
)

// Binding gates operations on the runtime binding being ready.
type Binding interface {
	Surface(op string) (ports.Surface, error)
}

// Service performs connection operations.
type Service struct {
	binding  Binding
	calls    *bridge.Bridge
	registry *handles.Registry
}

// NewService creates a connection service.
func NewService(binding Binding, calls *bridge.Bridge, registry *handles.Registry) *Service {
	return &Service{binding: binding, calls: calls, registry: registry}
}

// Create allocates a new connection for the given source id and returns its
// handle, registered live until Release.
func (s *Service) Create(ctx context.Context, sourceID string) (uint32, error) {
	const op = "vcx_connection_create"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return 0, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ConnectionCreate(token, sourceID)
	})
	if err != nil {
		return 0, err
	}
	id, err := decode.Handle(payload)
	if err != nil {
		return 0, err
	}
	s.registry.Register(handles.KindConnection, id)
	return id, nil
}

// Connect generates the connection invitation and returns its details.
func (s *Service) Connect(ctx context.Context, conn uint32, opts entities.ConnectOptions) (string, error) {
	const op = "vcx_connection_connect"
	if err := s.registry.AssertLive(op, conn); err != nil {
		return "", err
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return "", err
	}
	options, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encoding connect options: %w", err)
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ConnectionConnect(token, conn, string(options))
	})
	if err != nil {
		return "", err
	}
	return decode.String(payload)
}

// Serialize returns the connection's persistable state.
func (s *Service) Serialize(ctx context.Context, conn uint32) (string, error) {
	const op = "vcx_connection_serialize"
	if err := s.registry.AssertLive(op, conn); err != nil {
		return "", err
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return "", err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ConnectionSerialize(token, conn)
	})
	if err != nil {
		return "", err
	}
	return decode.String(payload)
}

// Release frees the connection handle.
func (s *Service) Release(ctx context.Context, conn uint32) error {
	return s.registry.Release(ctx, conn)
}

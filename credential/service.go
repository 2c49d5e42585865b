// Package credential exposes credential exchange and proof presentation.
// Credentials and proofs are native handles from creation until released.
package credential

import (
	"context"
	"encoding/json"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/handles"
	"github.com/aviary-id/go-vcx/internal/decode"
)

// Binding gates operations on the runtime binding being ready.
type Binding interface {
	Surface(op string) (ports.Surface, error)
}

// Service performs credential and proof operations.
type Service struct {
	binding  Binding
	calls    *bridge.Bridge
	registry *handles.Registry
}

// NewService creates a credential service.
func NewService(binding Binding, calls *bridge.Bridge, registry *handles.Registry) *Service {
	return &Service{binding: binding, calls: calls, registry: registry}
}

// CreateWithOffer accepts a credential offer and returns the credential
// handle, registered live until Release.
func (s *Service) CreateWithOffer(ctx context.Context, sourceID, offer string) (uint32, error) {
	const op = "vcx_credential_create_with_offer"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return 0, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.CredentialCreateWithOffer(token, sourceID, offer)
	})
	if err != nil {
		return 0, err
	}
	id, err := decode.Handle(payload)
	if err != nil {
		return 0, err
	}
	s.registry.Register(handles.KindCredential, id)
	return id, nil
}

// SendRequest sends the credential request over the connection.
func (s *Service) SendRequest(ctx context.Context, credential, conn uint32) error {
	const op = "vcx_credential_send_request"
	if err := s.registry.AssertLive(op, credential); err != nil {
		return err
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.CredentialSendRequest(token, credential, conn)
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

// Offers lists pending credential offers on the connection.
func (s *Service) Offers(ctx context.Context, conn uint32) ([]json.RawMessage, error) {
	const op = "vcx_credential_get_offers"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return nil, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.CredentialGetOffers(token, conn)
	})
	if err != nil {
		return nil, err
	}

	var offers []json.RawMessage
	if err := decode.JSON(payload, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// Release frees the credential handle.
func (s *Service) Release(ctx context.Context, credential uint32) error {
	return s.registry.Release(ctx, credential)
}

// CreateProofWithRequest accepts a proof request and returns the proof
// handle, registered live until ReleaseProof.
func (s *Service) CreateProofWithRequest(ctx context.Context, sourceID, request string) (uint32, error) {
	const op = "vcx_disclosed_proof_create_with_request"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return 0, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ProofCreateWithRequest(token, sourceID, request)
	})
	if err != nil {
		return 0, err
	}
	id, err := decode.Handle(payload)
	if err != nil {
		return 0, err
	}
	s.registry.Register(handles.KindProof, id)
	return id, nil
}

// SendPresentation sends the proof presentation over the connection.
func (s *Service) SendPresentation(ctx context.Context, proof, conn uint32) error {
	const op = "vcx_disclosed_proof_send_proof"
	if err := s.registry.AssertLive(op, proof); err != nil {
		return err
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ProofSendPresentation(token, proof, conn)
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

// ReleaseProof frees the proof handle.
func (s *Service) ReleaseProof(ctx context.Context, proof uint32) error {
	return s.registry.Release(ctx, proof)
}

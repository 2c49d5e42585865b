// Package agency exposes agent provisioning against a cloud agency.
package agency

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aviary-id/go-vcx/bridge"
	"github.com/aviary-id/go-vcx/domain/entities"
	verrors "github.com/aviary-id/go-vcx/domain/errors"
	"github.com/aviary-id/go-vcx/domain/ports"
	"github.com/aviary-id/go-vcx/internal/decode"
)

// validate is a package-level singleton for better performance.
var validate = validator.New()

// Binding gates operations on the runtime binding being ready.
type Binding interface {
	Surface(op string) (ports.Surface, error)
}

// Service performs agent provisioning operations.
type Service struct {
	binding Binding
	calls   *bridge.Bridge
}

// NewService creates an agency service.
func NewService(binding Binding, calls *bridge.Bridge) *Service {
	return &Service{binding: binding, calls: calls}
}

// Provision enrolls a new agent with the agency described by cfg and returns
// the provisioned agent configuration.
func (s *Service) Provision(ctx context.Context, cfg entities.ProvisionConfig) (entities.AgentConfig, error) {
	const op = "vcx_agent_provision_async"
	if err := validate.Struct(cfg); err != nil {
		return entities.AgentConfig{}, verrors.NewInvalidConfiguration("invalid provision config: %v", err)
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return entities.AgentConfig{}, err
	}
	config, err := json.Marshal(cfg)
	if err != nil {
		return entities.AgentConfig{}, fmt.Errorf("encoding provision config: %w", err)
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.ProvisionAgent(token, string(config))
	})
	if err != nil {
		return entities.AgentConfig{}, err
	}

	var agent entities.AgentConfig
	if err := decode.JSON(payload, &agent); err != nil {
		return entities.AgentConfig{}, err
	}
	return agent, nil
}

// UpdateInfo pushes updated agent metadata, such as the push-notification
// endpoint, to the agency.
func (s *Service) UpdateInfo(ctx context.Context, id, value string) error {
	const op = "vcx_agent_update_info"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return err
	}
	config, err := json.Marshal(map[string]string{"id": id, "value": value})
	if err != nil {
		return fmt.Errorf("encoding agent update: %w", err)
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.UpdateAgentInfo(token, string(config))
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

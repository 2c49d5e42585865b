// Package schema provides JSON schema generation for the SDK's configuration
// and record types, so integrators can validate documents before handing them
// to the native layer.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/aviary-id/go-vcx/domain/entities"
)

// Generate creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func Generate(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// Documents returns the schemas of every JSON document the SDK exchanges
// with callers, keyed by document name.
func Documents() (map[string][]byte, error) {
	types := map[string]any{
		"provision_config": entities.ProvisionConfig{},
		"agent_config":     entities.AgentConfig{},
		"wallet_record":    entities.WalletRecord{},
		"search_page":      entities.SearchPage{},
		"connect_options":  entities.ConnectOptions{},
	}
	out := make(map[string][]byte, len(types))
	for name, v := range types {
		s, err := Generate(v)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

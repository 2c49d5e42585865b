// Package decode turns native-encoded payloads into typed Go values. The
// result shapes form a closed set - absent, handle, string, or structured
// JSON carried in a string - and each shape has one total decoding function:
// every payload produces either a value or an error, never a panic.
package decode

import (
	"encoding/json"
	"fmt"

	"github.com/aviary-id/go-vcx/bridge"
)

// Absent asserts that a completion carried no result value.
func Absent(p bridge.Payload) error {
	if p.Kind != bridge.PayloadAbsent {
		return fmt.Errorf("expected no result value, native layer delivered kind %d", p.Kind)
	}
	return nil
}

// Handle extracts a numeric native handle.
func Handle(p bridge.Payload) (uint32, error) {
	if p.Kind != bridge.PayloadHandle {
		return 0, fmt.Errorf("expected handle result, native layer delivered kind %d", p.Kind)
	}
	return p.Handle, nil
}

// String extracts a string result.
func String(p bridge.Payload) (string, error) {
	if p.Kind != bridge.PayloadString {
		return "", fmt.Errorf("expected string result, native layer delivered kind %d", p.Kind)
	}
	return p.Str, nil
}

// Bytes extracts an opaque buffer result.
func Bytes(p bridge.Payload) ([]byte, error) {
	if p.Kind != bridge.PayloadBytes {
		return nil, fmt.Errorf("expected byte buffer result, native layer delivered kind %d", p.Kind)
	}
	return p.Bytes, nil
}

// JSON decodes a string payload holding a JSON document into v.
func JSON(p bridge.Payload, v any) error {
	s, err := String(p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("malformed native JSON payload: %w", err)
	}
	return nil
}

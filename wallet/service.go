// Package wallet exposes the agent wallet's record store: CRUD over typed
// records plus cursor-style search. Search cursors are native handles and are
// tracked by the handle registry from open to close.
package wallet

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

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

// Service performs wallet record operations.
type Service struct {
	binding  Binding
	calls    *bridge.Bridge
	registry *handles.Registry
}

// NewService creates a wallet service.
func NewService(binding Binding, calls *bridge.Bridge, registry *handles.Registry) *Service {
	return &Service{binding: binding, calls: calls, registry: registry}
}

// AddRecord stores a record and returns its id. An empty record id is minted
// on the caller's behalf.
func (s *Service) AddRecord(ctx context.Context, rec entities.WalletRecord) (string, error) {
	const op = "vcx_wallet_add_record"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	tags, err := marshalTags(rec.Tags)
	if err != nil {
		return "", err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletAddRecord(token, rec.Type, rec.ID, rec.Value, tags)
	})
	if err != nil {
		return "", err
	}
	return rec.ID, decode.Absent(payload)
}

// GetRecord fetches one record by type and id.
func (s *Service) GetRecord(ctx context.Context, recordType, recordID string) (entities.WalletRecord, error) {
	const op = "vcx_wallet_get_record"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return entities.WalletRecord{}, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletGetRecord(token, recordType, recordID, `{"retrieveType":true,"retrieveValue":true,"retrieveTags":true}`)
	})
	if err != nil {
		return entities.WalletRecord{}, err
	}

	var rec entities.WalletRecord
	if err := decode.JSON(payload, &rec); err != nil {
		return entities.WalletRecord{}, err
	}
	return rec, nil
}

// UpdateRecordValue replaces a record's value.
func (s *Service) UpdateRecordValue(ctx context.Context, recordType, recordID, value string) error {
	const op = "vcx_wallet_update_record_value"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletUpdateRecordValue(token, recordType, recordID, value)
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

// DeleteRecord removes a record.
func (s *Service) DeleteRecord(ctx context.Context, recordType, recordID string) error {
	const op = "vcx_wallet_delete_record"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletDeleteRecord(token, recordType, recordID)
	})
	if err != nil {
		return err
	}
	return decode.Absent(payload)
}

// OpenSearch starts a wallet search and returns its cursor handle, registered
// live until CloseSearch.
func (s *Service) OpenSearch(ctx context.Context, recordType, query string) (uint32, error) {
	const op = "vcx_wallet_open_search"
	surface, err := s.binding.Surface(op)
	if err != nil {
		return 0, err
	}
	if query == "" {
		query = "{}"
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletOpenSearch(token, recordType, query, "{}")
	})
	if err != nil {
		return 0, err
	}
	id, err := decode.Handle(payload)
	if err != nil {
		return 0, err
	}
	s.registry.Register(handles.KindSearch, id)
	return id, nil
}

// FetchNext retrieves up to count records from an open search cursor.
func (s *Service) FetchNext(ctx context.Context, search uint32, count uint32) (entities.SearchPage, error) {
	const op = "vcx_wallet_search_next_records"
	if err := s.registry.AssertLive(op, search); err != nil {
		return entities.SearchPage{}, err
	}
	surface, err := s.binding.Surface(op)
	if err != nil {
		return entities.SearchPage{}, err
	}

	payload, err := s.calls.Submit(ctx, op, func(token bridge.Token) bridge.Status {
		return surface.WalletSearchNextRecords(token, search, count)
	})
	if err != nil {
		return entities.SearchPage{}, err
	}

	var page entities.SearchPage
	if err := decode.JSON(payload, &page); err != nil {
		return entities.SearchPage{}, err
	}
	return page, nil
}

// CloseSearch releases a search cursor.
func (s *Service) CloseSearch(ctx context.Context, search uint32) error {
	return s.registry.Release(ctx, search)
}

func marshalTags(tags map[string]string) (string, error) {
	if len(tags) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

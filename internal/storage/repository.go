package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"daara/internal/core"
	"daara/internal/query"
)

// Repository reads and writes the application's two slots on a BlobStore.
type Repository struct {
	blobs BlobStore
}

func NewRepository(blobs BlobStore) *Repository {
	return &Repository{blobs: blobs}
}

// LoadAppData returns the persisted data, or the initial data (default split,
// no records, no members) when nothing was ever saved.
func (r *Repository) LoadAppData(ctx context.Context) (core.AppData, error) {
	raw, ok, err := r.blobs.Load(ctx, SlotAppData)
	if err != nil {
		return core.AppData{}, err
	}
	if !ok || len(raw) == 0 {
		return core.NewAppData(), nil
	}
	return DecodeAppData(raw)
}

func (r *Repository) SaveAppData(ctx context.Context, data core.AppData) error {
	raw, err := EncodeAppData(data)
	if err != nil {
		return err
	}
	return r.blobs.Save(ctx, SlotAppData, raw)
}

// LoadFilters returns the saved browser filters. Missing or unreadable
// filters fall back to matching everything.
func (r *Repository) LoadFilters(ctx context.Context) (query.Filter, error) {
	raw, ok, err := r.blobs.Load(ctx, SlotFilters)
	if err != nil {
		return query.Filter{}, err
	}
	if !ok {
		return query.DefaultFilter(), nil
	}
	var f query.Filter
	if err := json.Unmarshal(raw, &f); err != nil {
		return query.DefaultFilter(), nil
	}
	return f.Normalize(), nil
}

func (r *Repository) SaveFilters(ctx context.Context, f query.Filter) error {
	raw, err := json.Marshal(f.Normalize())
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	return r.blobs.Save(ctx, SlotFilters, raw)
}

// DecodeAppData parses an exported data blob and normalises it.
func DecodeAppData(raw []byte) (core.AppData, error) {
	data := core.NewAppData()
	if err := json.Unmarshal(raw, &data); err != nil {
		return core.AppData{}, fmt.Errorf("decode app data: %w", err)
	}
	if data.Records == nil {
		data.Records = core.RecordStore{}
	}
	if data.Config.Members == nil {
		data.Config.Members = []core.Member{}
	}
	out, err := data.Normalize()
	if err != nil {
		return core.AppData{}, fmt.Errorf("decode app data: %w", err)
	}
	return out, nil
}

func EncodeAppData(data core.AppData) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode app data: %w", err)
	}
	return raw, nil
}

// Package storage persists the ledger as named blobs. The sqlite store is
// the durable backend; the Repository layers the application's JSON layout
// on top of any BlobStore.
package storage

import "context"

// Slot names. They match the keys the browser build kept in localStorage so
// exports move between the two unchanged.
const (
	SlotAppData = "daara_maha_data"
	SlotFilters = "daara_maha_browser_filters"
)

// BlobStore is a durable map from slot name to opaque bytes.
type BlobStore interface {
	// Load returns the slot's bytes. ok is false when the slot was never
	// written.
	Load(ctx context.Context, slot string) (data []byte, ok bool, err error)
	Save(ctx context.Context, slot string, data []byte) error
	Close() error
}

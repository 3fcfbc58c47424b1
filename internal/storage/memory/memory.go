// Package memory is a process-local BlobStore, used for demos and tests.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"daara/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	slots map[string][]byte
	saves int
}

var _ storage.BlobStore = (*Store)(nil)

// New returns a store holding a copy of seed.
func New(seed map[string][]byte) *Store {
	s := &Store{slots: make(map[string][]byte, len(seed))}
	for k, v := range seed {
		s.slots[k] = clone(v)
	}
	return s
}

// NewFromDir seeds each known slot from "<dir>/<slot>.json" when that file
// exists. Missing files leave the slot empty.
func NewFromDir(dir string) *Store {
	seed := map[string][]byte{}
	for _, slot := range []string{storage.SlotAppData, storage.SlotFilters} {
		b, err := os.ReadFile(filepath.Join(dir, slot+".json"))
		if err != nil || len(b) == 0 {
			continue
		}
		seed[slot] = b
	}
	return New(seed)
}

func (s *Store) Load(_ context.Context, slot string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[slot]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *Store) Save(ctx context.Context, slot string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = clone(data)
	s.saves++
	return nil
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Store) Close() error { return nil }

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

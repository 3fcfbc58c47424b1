package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"daara/internal/storage"
)

func TestMemoryStoreLoadSave(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if _, ok, err := s.Load(ctx, "x"); ok || err != nil {
		t.Fatalf("expected empty slot, ok=%v err=%v", ok, err)
	}

	in := []byte(`{"a":1}`)
	if err := s.Save(ctx, "x", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in[0] = '!'
	got, ok, err := s.Load(ctx, "x")
	if err != nil || !ok || string(got) != `{"a":1}` {
		t.Fatalf("unexpected load: %q ok=%v err=%v", got, ok, err)
	}
	if s.Saves() != 1 {
		t.Fatalf("expected one save, got %d", s.Saves())
	}
}

func TestMemoryStoreSaveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(nil).Save(ctx, "x", nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	s := NewFromDir(dir)
	if _, ok, _ := s.Load(context.Background(), storage.SlotAppData); ok {
		t.Fatalf("expected no seed when files missing")
	}

	seed := `{"records":{},"config":{"defaultRenovationPercent":50}}`
	if err := os.WriteFile(filepath.Join(dir, storage.SlotAppData+".json"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromDir(dir)
	got, ok, _ := s.Load(context.Background(), storage.SlotAppData)
	if !ok || string(got) != seed {
		t.Fatalf("unexpected seed %q", got)
	}
}

// Package storagetest provides a conformance suite for storage.Storage
// implementations.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ggoodman/tracker-go/storage"
)

// Factory creates a new, empty Storage instance for testing.
type Factory func(t *testing.T) storage.Storage

// Run runs the complete Storage test suite against the provided factory.
func Run(t *testing.T, factory Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) { testSaveAndLoad(t, factory) })
	t.Run("LoadMissing", func(t *testing.T) { testLoadMissing(t, factory) })
	t.Run("Exists", func(t *testing.T) { testExists(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, factory) })
	t.Run("EmptyBlob", func(t *testing.T) { testEmptyBlob(t, factory) })
	t.Run("InvalidID", func(t *testing.T) { testInvalidID(t, factory) })
	t.Run("ConcurrentSaves", func(t *testing.T) { testConcurrentSaves(t, factory) })
}

func newStore(t *testing.T, factory Factory) (storage.Storage, context.Context) {
	t.Helper()
	s := factory(t)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return s, ctx
}

func testSaveAndLoad(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	data := []byte("2016-03-01T09:30:00.250Z, screen, start\r\n")
	if err := s.Save(ctx, "TrackerAsset.log", data); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := s.Load(ctx, "TrackerAsset.log")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("Load() returned wrong data: got %q, want %q", got, data)
	}
}

func testLoadMissing(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	_, err := s.Load(ctx, "missing.log")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() of missing id: want ErrNotFound, got %v", err)
	}
}

func testExists(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	ok, err := s.Exists(ctx, "a.log")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if ok {
		t.Fatal("Exists() reported a blob that was never saved")
	}

	if err := s.Save(ctx, "a.log", []byte("x")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	ok, err = s.Exists(ctx, "a.log")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if !ok {
		t.Fatal("Exists() missed a saved blob")
	}
}

func testOverwrite(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	if err := s.Save(ctx, "a.log", []byte("first")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Save(ctx, "a.log", []byte("second")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := s.Load(ctx, "a.log")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("want %q, got %q", "second", got)
	}
}

func testDelete(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	if err := s.Save(ctx, "a.log", []byte("x")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	deleted, err := s.Delete(ctx, "a.log")
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if !deleted {
		t.Fatal("Delete() should report removal of an existing blob")
	}

	deleted, err = s.Delete(ctx, "a.log")
	if err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}
	if deleted {
		t.Fatal("second Delete() should report nothing removed")
	}

	if _, err := s.Load(ctx, "a.log"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load() after Delete(): want ErrNotFound, got %v", err)
	}
}

func testIsolation(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	if err := s.Save(ctx, "a.log", []byte("a")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Save(ctx, "b.log", []byte("b")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := s.Delete(ctx, "a.log"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	got, err := s.Load(ctx, "b.log")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "b" {
		t.Fatalf("want %q, got %q", "b", got)
	}
}

func testEmptyBlob(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	if err := s.Save(ctx, "empty.log", nil); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	ok, err := s.Exists(ctx, "empty.log")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true", ok, err)
	}
	got, err := s.Load(ctx, "empty.log")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty blob, got %q", got)
	}
}

func testInvalidID(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	for _, id := range []string{"", "..", "../escape.log", `dir\file`} {
		if err := s.Save(ctx, id, []byte("x")); !errors.Is(err, storage.ErrInvalidID) {
			t.Errorf("Save(%q): want ErrInvalidID, got %v", id, err)
		}
	}
}

func testConcurrentSaves(t *testing.T, factory Factory) {
	s, ctx := newStore(t, factory)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(ctx, "shared.log", []byte("payload")); err != nil {
				t.Errorf("Save() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Load(ctx, "shared.log")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("want %q, got %q", "payload", got)
	}
}

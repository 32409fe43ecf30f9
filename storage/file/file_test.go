package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ggoodman/tracker-go/storage"
	"github.com/ggoodman/tracker-go/storage/storagetest"
)

func TestFileStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		return s
	})
}

func TestSaveWritesPlainFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := s.Save(context.Background(), "TrackerAsset.log", []byte("a\r\nb\r\n")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "logs", "TrackerAsset.log"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(raw) != "a\r\nb\r\n" {
		t.Fatalf("unexpected file content %q", raw)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") should fail")
	}
}

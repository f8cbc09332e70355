package photo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	content := []byte("jpeg bytes")
	if err := store.Save(context.Background(), "lion.jpg", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reader, err := store.Open(context.Background(), "lion.jpg")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestDiskStoreOverwritesExistingName(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	if err := store.Save(context.Background(), "lion.jpg", strings.NewReader("first"), 5); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(context.Background(), "lion.jpg", strings.NewReader("second"), 6); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reader, err := store.Open(context.Background(), "lion.jpg")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	got, _ := io.ReadAll(reader)
	if string(got) != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestDiskStoreOpenMissing(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Open(context.Background(), "does-not-exist.jpg")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDiskStoreOpenRejectsPathComponents(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.jpg"} {
		if _, err := store.Open(context.Background(), name); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound for %q, got %v", name, err)
		}
	}
}

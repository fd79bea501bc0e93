package cartstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestFileKVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := kv.Set(ctx, "profile1", []byte(`[{"productId":1}]`)); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, "profile1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte(`[{"productId":1}]`)) {
		t.Fatalf("round-trip mismatch: %s", got)
	}

	// Overwrite replaces the value and leaves no temp files behind.
	if err := kv.Set(ctx, "profile1", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	got, err = kv.Get(ctx, "profile1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte(`[]`)) {
		t.Fatalf("expected overwritten value, got %s", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileKVMissing(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := kv.Get(ctx, "never-seen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Delete(ctx, "never-seen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestFileKVDelete(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := kv.Set(ctx, "profile1", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, "profile1"); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, "profile1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/cartstore"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func sampleCart() Cart {
	c := Cart{}
	c = c.Add(Line{ProductID: 1, Name: "mug", UnitPrice: decimal.RequireFromString("9.50"), StockQuantity: 4}, 2)
	c = c.Add(Line{ProductID: 2, Name: "shirt", UnitPrice: decimal.RequireFromString("19.99"), StockQuantity: 7}, 1)
	return c
}

func fileStore(t *testing.T, dir string) *Store {
	t.Helper()
	kv, err := cartstore.NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(kv, testLogger())
}

func TestStoreRoundTrip(t *testing.T) {
	s := fileStore(t, t.TempDir())
	ctx := context.Background()

	want := sampleCart()
	s.Save(ctx, "profile1", want)

	got := s.Load(ctx, "profile1")
	if diff := cmp.Diff(want, got, decimals); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	s := fileStore(t, t.TempDir())

	if got := s.Load(context.Background(), "never-seen"); !got.Empty() {
		t.Fatalf("expected empty cart, got %d lines", len(got.Lines))
	}
}

func TestLoadCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := fileStore(t, dir)
	ctx := context.Background()

	s.Save(ctx, "profile1", sampleCart())

	if err := os.WriteFile(filepath.Join(dir, "profile1.json"), []byte(`{"not":"a cart`), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := s.Load(ctx, "profile1"); !got.Empty() {
		t.Fatalf("corrupt data must hydrate to an empty cart, got %d lines", len(got.Lines))
	}
}

func TestSaveEmptyDropsKey(t *testing.T) {
	dir := t.TempDir()
	s := fileStore(t, dir)
	ctx := context.Background()

	s.Save(ctx, "profile1", sampleCart())
	s.Save(ctx, "profile1", Cart{})

	if _, err := os.Stat(filepath.Join(dir, "profile1.json")); !os.IsNotExist(err) {
		t.Fatal("saving an empty cart must remove the durable key")
	}
	if got := s.Load(ctx, "profile1"); !got.Empty() {
		t.Fatal("expected empty cart after clearing save")
	}
}

type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("storage offline")
}

func (brokenKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("storage offline")
}

func (brokenKV) Delete(ctx context.Context, key string) error {
	return errors.New("storage offline")
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	s := NewStore(brokenKV{}, testLogger())
	ctx := context.Background()

	// Neither call may panic or surface an error: the in-memory
	// cart stays authoritative when durability is lost.
	s.Save(ctx, "profile1", sampleCart())
	s.Save(ctx, "profile1", Cart{})

	if got := s.Load(ctx, "profile1"); !got.Empty() {
		t.Fatal("unreadable storage must hydrate to an empty cart")
	}
}

package segmentcache

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"strollcast/internal/testsupport"
)

const testKey = "8c7ce8fe7a81200d22935c7f1aa29835a52c560e20eda84ef25308f216315c7d"

func TestFSStoreRoundTrip(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	ctx := context.Background()

	payload := []byte{0xff, 0xfb, 0x90, 0x00, 0x01, 0x02}
	if err := store.Put(ctx, testKey, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := store.Get(ctx, testKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("entry missing after Put")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Get returned %v, want %v", got, payload)
	}
}

func TestFSStoreAbsenceIsNotAnError(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	ctx := context.Background()

	data, found, err := store.Get(ctx, testKey)
	if err != nil {
		t.Fatalf("Get on empty cache: %v", err)
	}
	if found || data != nil {
		t.Fatalf("expected clean miss, got found=%v data=%v", found, data)
	}

	has, err := store.Has(ctx, testKey)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Fatal("Has reported a phantom entry")
	}
}

func TestFSStoreRejectsMalformedKeys(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	ctx := context.Background()

	for _, key := range []string{
		"",
		"short",
		"../../../../etc/passwd",
		strings.ToUpper(testKey),
		strings.Repeat("z", 64),
	} {
		if err := store.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("Put(%q) accepted a malformed key", key)
		}
		if _, _, err := store.Get(ctx, key); err == nil {
			t.Errorf("Get(%q) accepted a malformed key", key)
		}
	}
}

func TestFSStoreRejectsEmptyClip(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	if err := store.Put(context.Background(), testKey, nil); err == nil {
		t.Fatal("expected error storing empty clip")
	}
}

func TestFSStoreRewriteSameKey(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	ctx := context.Background()

	if err := store.Put(ctx, testKey, []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, testKey, []byte("first")); err != nil {
		t.Fatalf("idempotent rewrite failed: %v", err)
	}

	got, found, err := store.Get(ctx, testKey)
	if err != nil || !found {
		t.Fatalf("Get after rewrite: found=%v err=%v", found, err)
	}
	if string(got) != "first" {
		t.Fatalf("content = %q", got)
	}
}

func TestFSStoreStats(t *testing.T) {
	store := NewFSStore(t.TempDir(), nil)
	ctx := context.Background()

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats on missing dir: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("entries = %d, want 0", stats.Entries)
	}

	other := "dacf27fab00f307f195710a6c70b1a39c7dc27ae833a0873bcf96e040544ed5e"
	if err := store.Put(ctx, testKey, []byte("aaaa")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, other, []byte("bbbbbb")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Files that are not cache entries must not count toward the totals.
	testsupport.WriteFile(t, filepath.Join(store.Dir(), "notes.txt"), 128)

	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 || stats.TotalBytes != 10 {
		t.Fatalf("stats = %+v", stats)
	}
}

package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"strollcast/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEpisode() Episode {
	return Episode{
		ID:              "attention-is-all-you-need-2017",
		Title:           "Attention Is All You Need",
		Authors:         "Vaswani et al.",
		Year:            2017,
		Description:     "The transformer architecture.",
		Duration:        "24 min",
		DurationSeconds: 1440,
		AudioURL:        "https://media.example.com/episodes/vaswani-2017-attention.m4a",
		TranscriptURL:   "https://media.example.com/api/attention-is-all-you-need-2017.vtt",
		PaperURL:        "https://arxiv.org/abs/1706.03762",
		Topics:          []string{"Transformers", "Attention"},
	}
}

func TestUpsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, sampleEpisode()); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	ep, err := store.Get(ctx, "attention-is-all-you-need-2017")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ep.Title != "Attention Is All You Need" || ep.Year != 2017 {
		t.Fatalf("unexpected episode: %+v", ep)
	}
	if len(ep.Topics) != 2 || ep.Topics[0] != "Transformers" {
		t.Fatalf("topics did not round-trip: %v", ep.Topics)
	}
	if !ep.Published {
		t.Fatal("upserted episode should be published")
	}
	if ep.CreatedAt.IsZero() || ep.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", ep)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ep := sampleEpisode()
	if err := store.Upsert(ctx, ep); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	first, err := store.Get(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	ep.Description = "Updated description."
	if err := store.Upsert(ctx, ep); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	second, err := store.Get(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed on upsert: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.Description != "Updated description." {
		t.Fatalf("description not updated: %q", second.Description)
	}
}

func TestUpsertWithoutOptionalFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ep := Episode{ID: "minimal-2024", Title: "Minimal", Authors: "Doe", Year: 2024}
	if err := store.Upsert(ctx, ep); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	got, err := store.Get(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.TranscriptURL != "" || got.PaperURL != "" || got.Topics != nil {
		t.Fatalf("optional fields should be empty: %+v", got)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	store := openTestStore(t)
	err := store.Upsert(context.Background(), Episode{Title: "No ID"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetMissingEpisode(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := sampleEpisode()
	older.ID = "older-2016"
	if err := store.Upsert(ctx, older); err != nil {
		t.Fatalf("Upsert older: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	newer := sampleEpisode()
	newer.ID = "newer-2024"
	if err := store.Upsert(ctx, newer); err != nil {
		t.Fatalf("Upsert newer: %v", err)
	}

	episodes, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if episodes[0].ID != "newer-2024" {
		t.Fatalf("expected newest first, got %s", episodes[0].ID)
	}
}

func TestDeriveEpisodeName(t *testing.T) {
	cases := []struct {
		authors string
		year    int
		id      string
		want    string
	}{
		{"Vaswani et al.", 2017, "attention-is-all-you-need-2017", "al.-2017-attention"},
		{"Ashish Vaswani, Noam Shazeer", 2017, "attention-transformers", "vaswani-2017-attention"},
		{"Jane Doe and John Smith", 2023, "fsdp-scaling", "doe-2023-fsdp"},
		{"", 2024, "episode-1", "unknown-2024-episode"},
	}
	for _, tc := range cases {
		if got := DeriveEpisodeName(tc.authors, tc.year, tc.id); got != tc.want {
			t.Errorf("DeriveEpisodeName(%q, %d, %q) = %q, want %q", tc.authors, tc.year, tc.id, got, tc.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(24*time.Minute + 36*time.Second); got != "24 min" {
		t.Fatalf("FormatDuration = %q", got)
	}
	if got := FormatDuration(45 * time.Second); got != "0 min" {
		t.Fatalf("FormatDuration = %q", got)
	}
}

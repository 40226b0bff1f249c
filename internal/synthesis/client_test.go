package synthesis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, UseSpeakerBoost: true},
		WithSleeper(func(time.Duration) {}),
	)
	return client, server
}

func TestSynthesizeSendsVoiceSettings(t *testing.T) {
	var gotPath string
	var gotBody convertRequest
	var gotKey string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Write([]byte("mp3-bytes"))
	})

	audio, err := client.Synthesize(context.Background(), Request{
		Text:            "Hello there.",
		VoiceID:         "voice-123",
		ModelID:         "eleven_turbo_v2_5",
		Stability:       0.5,
		SimilarityBoost: 0.75,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", audio)
	}
	if gotPath != "/text-to-speech/voice-123" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotBody.Text != "Hello there." || gotBody.ModelID != "eleven_turbo_v2_5" {
		t.Fatalf("body = %+v", gotBody)
	}
	if !gotBody.VoiceSettings.UseSpeakerBoost || gotBody.VoiceSettings.SimilarityBoost != 0.75 {
		t.Fatalf("voice settings = %+v", gotBody.VoiceSettings)
	}
}

func TestSynthesizeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	audio, err := client.Synthesize(context.Background(), Request{Text: "t", VoiceID: "v"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "ok" {
		t.Fatalf("audio = %q", audio)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestSynthesizeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"quota_exceeded"}`, http.StatusUnauthorized)
	})

	_, err := client.Synthesize(context.Background(), Request{Text: "t", VoiceID: "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "http 401") {
		t.Fatalf("error = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestSynthesizeRequiresInputs(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	if _, err := client.Synthesize(context.Background(), Request{VoiceID: "v"}); err == nil {
		t.Fatal("expected error for missing text")
	}
	if _, err := client.Synthesize(context.Background(), Request{Text: "t"}); err == nil {
		t.Fatal("expected error for missing voice")
	}

	keyless := NewClient(Config{})
	if _, err := keyless.Synthesize(context.Background(), Request{Text: "t", VoiceID: "v"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestSynthesizeHonorsContextCancellation(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Synthesize(ctx, Request{Text: "t", VoiceID: "v"}); err == nil {
		t.Fatal("expected error under cancelled context")
	}
}

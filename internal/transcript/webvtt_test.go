package transcript

import (
	"strings"
	"testing"
	"time"
)

func TestWebVTTScenario(t *testing.T) {
	cues := []Cue{
		{Speaker: "Eric", Text: "Welcome back to the show.", Start: 0, End: 2300 * time.Millisecond},
		{Speaker: "Maya", Text: "Glad to be here.", Start: 2600 * time.Millisecond, End: 4100 * time.Millisecond},
	}

	got := WebVTT(cues)
	want := "WEBVTT\n\n" +
		"1\n" +
		"00:00:00.000 --> 00:00:02.300\n" +
		"<v Eric>Welcome back to the show.\n\n" +
		"2\n" +
		"00:00:02.600 --> 00:00:04.100\n" +
		"<v Maya>Glad to be here.\n\n"
	if got != want {
		t.Fatalf("unexpected document:\n%s", got)
	}
}

func TestWebVTTEmpty(t *testing.T) {
	got := WebVTT(nil)
	if got != "WEBVTT\n\n" {
		t.Fatalf("expected bare header, got %q", got)
	}
}

func TestWebVTTSequentialNumbering(t *testing.T) {
	cues := make([]Cue, 12)
	for i := range cues {
		cues[i] = Cue{
			Speaker: "Eric",
			Text:    "line",
			Start:   time.Duration(i) * time.Second,
			End:     time.Duration(i)*time.Second + 500*time.Millisecond,
		}
	}
	doc := WebVTT(cues)
	if !strings.Contains(doc, "\n12\n00:00:11.000 --> 00:00:11.500\n") {
		t.Fatalf("expected cue 12 at eleven seconds, got:\n%s", doc)
	}
}

func TestTimestamp(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{947 * time.Millisecond, "00:00:00.947"},
		{61500 * time.Millisecond, "00:01:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03.004"},
		{25 * time.Hour, "25:00:00.000"},
		{-time.Second, "00:00:00.000"},
	}
	for _, tc := range cases {
		if got := Timestamp(tc.d); got != tc.want {
			t.Errorf("Timestamp(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

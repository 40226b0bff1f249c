package paper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractID(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"https://arxiv.org/abs/2311.12022", "2311.12022", true},
		{"https://arxiv.org/pdf/2311.12022.pdf", "2311.12022", true},
		{"2311.12022", "2311.12022", true},
		{"2311.12022v2", "2311.12022", true},
		{"https://example.com/paper", "", false},
		{"not an id", "", false},
	}
	for _, tc := range cases {
		got, err := ExtractID(tc.input)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ExtractID(%q) = (%q, %v), want %q", tc.input, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ExtractID(%q) accepted invalid input", tc.input)
		}
	}
}

const atomResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All You
 Need</title>
    <summary>  The dominant sequence transduction models are based on complex
 recurrent networks.  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
</feed>`

func TestFetchMetadata(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(atomResponse))
	}))
	defer srv.Close()

	fetcher := NewFetcher(WithBaseURLs(srv.URL, ""))
	meta, err := fetcher.FetchMetadata(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("FetchMetadata returned error: %v", err)
	}
	if !strings.Contains(gotPath, "id_list=1706.03762") {
		t.Fatalf("unexpected query %q", gotPath)
	}
	if meta.Title != "Attention Is All You Need" {
		t.Fatalf("title = %q", meta.Title)
	}
	if len(meta.Authors) != 2 || meta.Authors[0] != "Ashish Vaswani" {
		t.Fatalf("authors = %v", meta.Authors)
	}
	if meta.Published != "2017-06-12" || meta.Year() != 2017 {
		t.Fatalf("published = %q, year = %d", meta.Published, meta.Year())
	}
	if !strings.HasPrefix(meta.Abstract, "The dominant sequence") {
		t.Fatalf("abstract = %q", meta.Abstract)
	}
	if meta.AbsURL() != "https://arxiv.org/abs/1706.03762" {
		t.Fatalf("abs url = %q", meta.AbsURL())
	}
}

func TestFetchMetadataNoEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer srv.Close()

	fetcher := NewFetcher(WithBaseURLs(srv.URL, ""))
	if _, err := fetcher.FetchMetadata(context.Background(), "0000.00000"); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestFetchContentPrefersAr5iv(t *testing.T) {
	article := "<html><body><article><h1>Title</h1><p>" +
		strings.Repeat("Meaningful paper sentence. ", 40) +
		"</p><math><mi>x</mi></math></article></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(article))
	}))
	defer srv.Close()

	fetcher := NewFetcher(WithBaseURLs("", srv.URL))
	content, source := fetcher.FetchContent(context.Background(), Metadata{ArxivID: "1706.03762", Abstract: "abs"})
	if source != SourceAr5iv {
		t.Fatalf("source = %q, want ar5iv", source)
	}
	if !strings.Contains(content, "Meaningful paper sentence.") {
		t.Fatalf("content missing body text: %q", content[:80])
	}
	if strings.Contains(content, "<p>") || strings.Contains(content, "<mi>") {
		t.Fatalf("markup leaked into content: %q", content[:120])
	}
}

func TestFetchContentFallsBackToAbstract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fetcher := NewFetcher(WithBaseURLs("", srv.URL))
	content, source := fetcher.FetchContent(context.Background(), Metadata{ArxivID: "1706.03762", Abstract: "The abstract text."})
	if source != SourceAbstract {
		t.Fatalf("source = %q, want abstract", source)
	}
	if !strings.Contains(content, "The abstract text.") {
		t.Fatalf("fallback missing abstract: %q", content)
	}
}

func TestFetchContentRejectsShortRendering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<article><p>too short</p></article>"))
	}))
	defer srv.Close()

	fetcher := NewFetcher(WithBaseURLs("", srv.URL))
	_, source := fetcher.FetchContent(context.Background(), Metadata{ArxivID: "1706.03762", Abstract: "abs"})
	if source != SourceAbstract {
		t.Fatalf("short rendering should fall back, got source %q", source)
	}
}

func TestBuildPromptFillsPlaceholders(t *testing.T) {
	meta := Metadata{
		Title:    "Attention Is All You Need",
		Authors:  []string{"Ashish Vaswani", "Noam Shazeer"},
		Abstract: "Sequence transduction.",
	}
	prompt := BuildPrompt(meta, "Full body text.")
	for _, want := range []string{
		"Attention Is All You Need",
		"Ashish Vaswani, Noam Shazeer",
		"Sequence transduction.",
		"Full body text.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Fatal("unfilled placeholder remains in prompt")
	}
}

func TestWriteScript(t *testing.T) {
	var gotAuth, gotReferer string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**ERIC:** Hello."}}]}`))
	}))
	defer srv.Close()

	writer := NewScriptWriter(WriterConfig{
		APIKey:  "key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Referer: "https://example.com",
	})
	script, err := writer.WriteScript(context.Background(), "write a script")
	if err != nil {
		t.Fatalf("WriteScript returned error: %v", err)
	}
	if script != "**ERIC:** Hello." {
		t.Fatalf("script = %q", script)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReferer != "https://example.com" {
		t.Fatalf("referer header = %q", gotReferer)
	}
	if !strings.Contains(gotBody, `"model":"test-model"`) || !strings.Contains(gotBody, "write a script") {
		t.Fatalf("unexpected request body: %s", gotBody)
	}
}

func TestWriteScriptRetriesServerFaults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"script"}}]}`))
	}))
	defer srv.Close()

	writer := NewScriptWriter(
		WriterConfig{APIKey: "key", BaseURL: srv.URL, Model: "m"},
		WithWriterSleeper(func(time.Duration) {}),
	)
	script, err := writer.WriteScript(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("WriteScript returned error: %v", err)
	}
	if script != "script" || calls != 3 {
		t.Fatalf("script = %q after %d calls", script, calls)
	}
}

func TestWriteScriptDoesNotRetryAuthFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	writer := NewScriptWriter(
		WriterConfig{APIKey: "key", BaseURL: srv.URL, Model: "m"},
		WithWriterSleeper(func(time.Duration) {}),
	)
	if _, err := writer.WriteScript(context.Background(), "prompt"); err == nil {
		t.Fatal("expected auth failure to surface")
	}
	if calls != 1 {
		t.Fatalf("auth failure retried %d times", calls)
	}
}

func TestWriteScriptRequiresAPIKey(t *testing.T) {
	writer := NewScriptWriter(WriterConfig{BaseURL: "http://unused", Model: "m"})
	if _, err := writer.WriteScript(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error without api key")
	}
}

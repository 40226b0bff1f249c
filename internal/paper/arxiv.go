package paper

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"strollcast/internal/services"
)

const (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	ar5ivBase    = "https://ar5iv.labs.arxiv.org/html"
)

// Metadata is the paper identity needed for script generation and catalog
// entries.
type Metadata struct {
	ArxivID   string
	Title     string
	Authors   []string
	Abstract  string
	Published string // YYYY-MM-DD
	PDFURL    string
}

// Year returns the publication year, or 0 when unknown.
func (m Metadata) Year() int {
	if len(m.Published) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(m.Published[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// AbsURL returns the paper's abstract page.
func (m Metadata) AbsURL() string {
	return "https://arxiv.org/abs/" + m.ArxivID
}

var arxivIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/abs/(\d+\.\d+)`),
	regexp.MustCompile(`arxiv\.org/pdf/(\d+\.\d+)`),
	regexp.MustCompile(`^(\d+\.\d+)(v\d+)?$`),
}

// ExtractID pulls the bare arXiv identifier out of a URL or raw ID,
// dropping any version suffix.
func ExtractID(input string) (string, error) {
	input = strings.TrimSpace(input)
	for _, pattern := range arxivIDPatterns {
		if m := pattern.FindStringSubmatch(input); m != nil {
			return m[1], nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "paper", "", fmt.Sprintf("could not extract arXiv ID from %q", input), nil)
}

// Fetcher retrieves paper metadata and content over HTTP.
type Fetcher struct {
	httpClient *http.Client
	apiBase    string
	ar5ivBase  string
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the HTTP client used for all fetches.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithBaseURLs overrides the arXiv API and ar5iv endpoints (for testing).
func WithBaseURLs(apiBase, ar5iv string) FetcherOption {
	return func(f *Fetcher) {
		if apiBase != "" {
			f.apiBase = apiBase
		}
		if ar5iv != "" {
			f.ar5ivBase = ar5iv
		}
	}
}

// NewFetcher constructs a Fetcher with sane timeouts.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    arxivAPIBase,
		ar5ivBase:  ar5ivBase,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// atomFeed mirrors the slice of the arXiv Atom response the fetcher needs.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// FetchMetadata queries the arXiv API for a paper's metadata.
func (f *Fetcher) FetchMetadata(ctx context.Context, arxivID string) (Metadata, error) {
	url := f.apiBase + "?id_list=" + arxivID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("build metadata request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "paper", "metadata", "arxiv query failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, services.Wrap(services.ErrTransient, "paper", "metadata", fmt.Sprintf("arxiv query returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata response: %w", err)
	}
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return Metadata{}, services.Wrap(services.ErrNotFound, "paper", "metadata", fmt.Sprintf("no paper with arXiv ID %s", arxivID), nil)
	}

	entry := feed.Entries[0]
	title := collapseWhitespace(entry.Title)
	if title == "" {
		return Metadata{}, services.Wrap(services.ErrNotFound, "paper", "metadata", fmt.Sprintf("no paper with arXiv ID %s", arxivID), nil)
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	published := entry.Published
	if len(published) > 10 {
		published = published[:10]
	}

	return Metadata{
		ArxivID:   arxivID,
		Title:     title,
		Authors:   authors,
		Abstract:  collapseWhitespace(entry.Summary),
		Published: published,
		PDFURL:    "https://arxiv.org/pdf/" + arxivID + ".pdf",
	}, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

package paper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Content sources, in fallback order.
const (
	SourceAr5iv    = "ar5iv"
	SourceAbstract = "abstract"
)

// Content limits: anything shorter than minContentLength is treated as a
// failed extraction; anything longer than maxContentLength is truncated to
// stay within the model's context.
const (
	minContentLength = 500
	maxContentLength = 100_000
)

// FetchContent retrieves the paper body for prompting. It prefers the ar5iv
// HTML rendering; when that is unavailable it falls back to the abstract
// with a note that content was limited. The returned source names which path
// was taken.
func (f *Fetcher) FetchContent(ctx context.Context, meta Metadata) (content, source string) {
	if text, err := f.fetchAr5iv(ctx, meta.ArxivID); err == nil {
		return text, SourceAr5iv
	}
	return abstractFallback(meta.Abstract), SourceAbstract
}

func (f *Fetcher) fetchAr5iv(ctx context.Context, arxivID string) (string, error) {
	url := f.ar5ivBase + "/" + arxivID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ar5iv returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}
	doc := string(body)
	if strings.Contains(doc, "Conversion failed") || strings.Contains(strings.ToLower(doc), "not found") {
		return "", fmt.Errorf("ar5iv has no rendering for %s", arxivID)
	}

	if m := articlePattern.FindStringSubmatch(doc); m != nil {
		doc = m[1]
	}
	text := htmlToText(doc)
	if len(text) < minContentLength {
		return "", fmt.Errorf("ar5iv rendering too short (%d bytes)", len(text))
	}
	if len(text) > maxContentLength {
		text = text[:maxContentLength] + "\n\n[... content truncated ...]"
	}
	return text, nil
}

var (
	articlePattern = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	dropBlocks     = regexp.MustCompile(`(?is)<(script|style|math|svg)[^>]*>.*?</(script|style|math|svg)>`)
	blockBreaks    = regexp.MustCompile(`(?i)</?(p|div|section|h[1-6]|li|tr|figure|figcaption)[^>]*>`)
	anyTag         = regexp.MustCompile(`<[^>]+>`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	spaceRuns      = regexp.MustCompile(`[ \t]+`)
)

// htmlToText strips markup while keeping paragraph structure readable.
func htmlToText(doc string) string {
	doc = dropBlocks.ReplaceAllString(doc, " ")
	doc = blockBreaks.ReplaceAllString(doc, "\n")
	doc = anyTag.ReplaceAllString(doc, " ")
	doc = html.UnescapeString(doc)
	doc = spaceRuns.ReplaceAllString(doc, " ")

	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	doc = strings.Join(lines, "\n")
	doc = blankRuns.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}

func abstractFallback(abstract string) string {
	return fmt.Sprintf(`[Note: full paper content could not be extracted. Generating script based on the abstract and the model's knowledge of the paper. The script may need more editing.]

Abstract:
%s

Please generate the podcast script based on:
1. The abstract above
2. Your training knowledge about this paper and related work
3. General understanding of the topic area

Focus on explaining the key concepts clearly for a podcast audience.
`, abstract)
}

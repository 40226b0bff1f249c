package synthesis

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Request captures every parameter that influences a segment's synthesized
// acoustics or post-processing. Two requests that compare equal must produce
// acoustically equivalent output; this is the cache-correctness invariant.
type Request struct {
	Text            string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64

	// Normalized records whether loudness normalization is applied to the
	// clip before caching, and TargetLUFS which integrated-loudness target.
	// Both belong in the fingerprint: a clip normalized to a different
	// target is a different artifact.
	Normalized bool
	TargetLUFS float64
}

// Fingerprint returns the cache key for the request: the SHA-256 of its
// canonical serialization, rendered as a 64-character hex string.
func (r Request) Fingerprint() string {
	sum := sha256.Sum256([]byte(r.CanonicalJSON()))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON serializes the request with lexicographically ordered fields
// and Python-compatible value formatting, so keys match those written by the
// original generator regardless of which implementation produced them.
//
// The lufs field is present only for normalized requests; an unnormalized
// clip is the same artifact whatever the configured target happens to be.
func (r Request) CanonicalJSON() string {
	var b strings.Builder
	b.WriteByte('{')
	if r.Normalized {
		writeField(&b, "lufs", formatNumber(r.TargetLUFS))
		b.WriteString(", ")
	}
	writeField(&b, "model_id", encodeString(r.ModelID))
	b.WriteString(", ")
	writeField(&b, "normalized", strconv.FormatBool(r.Normalized))
	b.WriteString(", ")
	writeField(&b, "similarity_boost", formatFloat(r.SimilarityBoost))
	b.WriteString(", ")
	writeField(&b, "stability", formatFloat(r.Stability))
	b.WriteString(", ")
	writeField(&b, "style", formatFloat(r.Style))
	b.WriteString(", ")
	writeField(&b, "text", encodeString(r.Text))
	b.WriteString(", ")
	writeField(&b, "voice_id", encodeString(r.VoiceID))
	b.WriteByte('}')
	return b.String()
}

func writeField(b *strings.Builder, key, encodedValue string) {
	b.WriteByte('"')
	b.WriteString(key)
	b.WriteString(`": `)
	b.WriteString(encodedValue)
}

// formatFloat renders a float the way Python's repr does for the values that
// occur here: integral floats keep one decimal place ("0.0", "1.0").
func formatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatNumber renders integral values without a decimal part ("-16"),
// matching a Python int literal.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const hexDigits = "0123456789abcdef"

// encodeString mimics Python json.dumps default escaping (ensure_ascii=True):
// ASCII-safe output with \uXXXX escapes for everything outside 0x20..0x7e,
// using UTF-16 surrogate pairs beyond the BMP.
func encodeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicodeEscape(&b, hi)
				writeUnicodeEscape(&b, lo)
			default:
				writeUnicodeEscape(&b, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xf])
	b.WriteByte(hexDigits[(r>>8)&0xf])
	b.WriteByte(hexDigits[(r>>4)&0xf])
	b.WriteByte(hexDigits[r&0xf])
}

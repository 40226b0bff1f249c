package script

import (
	"regexp"
	"strings"
)

// The annotation grammar, in stripping order. Source citations must go
// before plain asides so that "**[...]**" does not leave dangling asterisks.
var (
	annotationSpan = regexp.MustCompile(`\{\{[^}]*\}\}`)
	boldAside      = regexp.MustCompile(`\*\*\[.*?\]\*\*`)
	bracketAside   = regexp.MustCompile(`\[.*?\]`)
)

// CleanUtterance strips citation annotations ({{...}}), bracketed stage
// directions, and emphasis markers from a speech line, leaving the plain
// text handed to the synthesizer. The cleaned text feeds the cache
// fingerprint, so the transform must stay deterministic.
func CleanUtterance(text string) string {
	text = annotationSpan.ReplaceAllString(text, "")
	text = boldAside.ReplaceAllString(text, "")
	text = bracketAside.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	return strings.TrimSpace(text)
}

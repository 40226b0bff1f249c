// Package script parses speaker-tagged markdown dialogue into the ordered
// segment list consumed by the episode pipeline. Speech lines look like
// "**ERIC:** text"; section headers ("## [...]") become pause segments.
package script

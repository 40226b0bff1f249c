// Package segmentcache provides the content-addressed store of synthesized,
// normalized audio clips. Entries are keyed by the synthesis fingerprint and
// are effectively write-once: the pipeline never mutates an existing entry,
// and concurrent duplicate writes of the same key are harmless.
package segmentcache

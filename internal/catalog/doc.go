// Package catalog persists episode metadata in a local SQLite database:
// titles, authorship, durations, and the public URLs of published artifacts.
// Upserts preserve the original creation timestamp so re-publishing an
// episode does not rewrite its history.
package catalog

// Package storage talks to the S3-compatible object store (Cloudflare R2)
// that backs the shared segment cache and hosts published episodes. Two
// buckets: one content-addressed cache of normalized clips, one for finished
// episode audio and transcripts served from a public domain.
package storage

package segmentcache

import (
	"context"
	"fmt"
	"regexp"
)

// Store is the narrow capability the pipeline depends on. Get reports
// absence through the boolean, never through the error: a miss is a normal
// outcome on first synthesis of new text.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Has(ctx context.Context, key string) (bool, error)
}

var keyPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateKey rejects anything that is not a lowercase SHA-256 hex digest.
// Keys become file and object names, so malformed ones must never reach a
// backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("segmentcache: malformed key %q", key)
	}
	return nil
}

// ObjectName returns the storage name for a key. Clips are stored as MP3.
func ObjectName(key string) string {
	return key + ".mp3"
}

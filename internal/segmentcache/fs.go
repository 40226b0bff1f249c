package segmentcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"strollcast/internal/logging"
)

// FSStore keeps one MP3 per fingerprint under a flat directory. Writes go
// through a temp file and rename so a crashed or cancelled run never leaves a
// partial entry behind under a valid key.
type FSStore struct {
	dir    string
	logger *slog.Logger
}

// NewFSStore creates a filesystem-backed segment store rooted at dir.
func NewFSStore(dir string, logger *slog.Logger) *FSStore {
	return &FSStore{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "segmentcache"),
	}
}

// Get returns the cached clip for key, or found=false when absent.
func (s *FSStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("segmentcache: read %s: %w", key, err)
	}
	return data, true, nil
}

// Has reports whether a clip exists for key without reading it.
func (s *FSStore) Has(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := os.Stat(s.entryPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("segmentcache: stat %s: %w", key, err)
	}
	return true, nil
}

// Put stores a complete clip under key. Rewriting an existing key is
// harmless; the temp-and-rename dance keeps concurrent writers from ever
// exposing torn content.
func (s *FSStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("segmentcache: refusing to store empty clip for %s", key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("segmentcache: create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("segmentcache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("segmentcache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("segmentcache: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.entryPath(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("segmentcache: rename temp file: %w", err)
	}

	s.logger.Debug("cached segment",
		logging.String(logging.FieldCacheKey, key),
		logging.Int("bytes", len(data)))
	return nil
}

// Stats summarizes current cache contents for CLI display.
type Stats struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"total_bytes"`
}

// Stats walks the cache directory and tallies entries.
func (s *FSStore) Stats() (Stats, error) {
	var stats Stats
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("segmentcache: scan cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp3" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}

// Dir returns the cache root.
func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) entryPath(key string) string {
	return filepath.Join(s.dir, ObjectName(key))
}

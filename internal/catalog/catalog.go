package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"strollcast/internal/services"
)

// Episode is one catalog row.
type Episode struct {
	ID              string
	Title           string
	Authors         string
	Year            int
	Description     string
	Duration        string
	DurationSeconds int
	AudioURL        string
	TranscriptURL   string
	PaperURL        string
	Topics          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Published       bool
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "", "database path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS episodes (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    authors          TEXT NOT NULL,
    year             INTEGER NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    duration         TEXT NOT NULL DEFAULT '',
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    audio_url        TEXT NOT NULL DEFAULT '',
    transcript_url   TEXT,
    paper_url        TEXT,
    topics           TEXT,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    published        INTEGER NOT NULL DEFAULT 0
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces an episode row. The row's created_at survives
// replacement; updated_at always moves forward.
func (s *Store) Upsert(ctx context.Context, ep Episode) error {
	if strings.TrimSpace(ep.ID) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "upsert", "episode id is required", nil)
	}

	var topicsJSON any
	if len(ep.Topics) > 0 {
		encoded, err := json.Marshal(ep.Topics)
		if err != nil {
			return fmt.Errorf("marshal topics: %w", err)
		}
		topicsJSON = string(encoded)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO episodes (
    id, title, authors, year, description, duration, duration_seconds,
    audio_url, transcript_url, paper_url, topics, created_at, updated_at, published
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    COALESCE((SELECT created_at FROM episodes WHERE id = ?), ?),
    ?, 1)`,
		ep.ID, ep.Title, ep.Authors, ep.Year, ep.Description, ep.Duration, ep.DurationSeconds,
		ep.AudioURL, nullableString(ep.TranscriptURL), nullableString(ep.PaperURL), topicsJSON,
		ep.ID, now, now)
	if err != nil {
		return fmt.Errorf("upsert episode %s: %w", ep.ID, err)
	}
	return nil
}

// Get returns the episode with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, authors, year, description, duration, duration_seconds,
       audio_url, transcript_url, paper_url, topics, created_at, updated_at, published
FROM episodes WHERE id = ?`, id)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "get", fmt.Sprintf("episode %s", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get episode %s: %w", id, err)
	}
	return ep, nil
}

// List returns all episodes, newest first.
func (s *Store) List(ctx context.Context) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, authors, year, description, duration, duration_seconds,
       audio_url, transcript_url, paper_url, topics, created_at, updated_at, published
FROM episodes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (*Episode, error) {
	var (
		ep            Episode
		transcriptURL sql.NullString
		paperURL      sql.NullString
		topicsJSON    sql.NullString
		createdAt     string
		updatedAt     string
		published     int
	)
	err := row.Scan(&ep.ID, &ep.Title, &ep.Authors, &ep.Year, &ep.Description,
		&ep.Duration, &ep.DurationSeconds, &ep.AudioURL, &transcriptURL, &paperURL,
		&topicsJSON, &createdAt, &updatedAt, &published)
	if err != nil {
		return nil, err
	}
	ep.TranscriptURL = transcriptURL.String
	ep.PaperURL = paperURL.String
	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &ep.Topics); err != nil {
			return nil, fmt.Errorf("decode topics: %w", err)
		}
	}
	if ep.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if ep.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	ep.Published = published != 0
	return &ep, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// DeriveEpisodeName builds the output file stem for an episode:
// first author's lowercased last name, year, and the leading token of the
// catalog id.
func DeriveEpisodeName(authors string, year int, id string) string {
	first := strings.TrimSpace(strings.Split(strings.Split(authors, ",")[0], " and ")[0])
	lastName := "unknown"
	if fields := strings.Fields(first); len(fields) > 0 {
		lastName = strings.ToLower(fields[len(fields)-1])
	}
	slug := strings.Split(id, "-")[0]
	if slug == "" {
		slug = "episode"
	}
	return fmt.Sprintf("%s-%d-%s", lastName, year, slug)
}

// FormatDuration renders a playback duration the way the catalog displays
// it, in whole minutes.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%d min", int(d.Minutes()))
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working and output directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`   // scratch space for per-run segment files
	OutputDir string `toml:"output_dir"` // final episode audio and transcripts
	LogDir    string `toml:"log_dir"`
}

// Cache contains configuration for the local content-addressed segment cache.
type Cache struct {
	Dir string `toml:"dir"`
}

// Voices maps the closed speaker set to synthesis voice identifiers.
type Voices struct {
	Eric string `toml:"eric"`
	Maya string `toml:"maya"`
}

// Synthesis contains configuration for the speech synthesis API.
type Synthesis struct {
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	ModelID         string  `toml:"model_id"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	Style           float64 `toml:"style"`
	UseSpeakerBoost bool    `toml:"use_speaker_boost"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	MaxConcurrent   int     `toml:"max_concurrent"`
}

// Normalization contains the loudness targets applied to every clip. These
// values feed the cache fingerprint, so changing them invalidates prior
// cache entries by design of the keying scheme.
type Normalization struct {
	Enabled       bool    `toml:"enabled"`
	TargetLUFS    float64 `toml:"target_lufs"`
	TruePeak      float64 `toml:"true_peak"`
	LoudnessRange float64 `toml:"loudness_range"`
}

// Assembly contains concatenation and silence-gap settings.
type Assembly struct {
	UtteranceGapMS int    `toml:"utterance_gap_ms"` // silence after each speech clip
	SectionGapMS   int    `toml:"section_gap_ms"`   // silence for section-break pauses
	SampleRate     int    `toml:"sample_rate"`
	Channels       int    `toml:"channels"`
	Bitrate        string `toml:"bitrate"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
}

// Storage contains configuration for the S3-compatible object store used as
// the shared segment cache and episode publishing target.
type Storage struct {
	Enabled         bool   `toml:"enabled"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	CacheBucket     string `toml:"cache_bucket"`
	OutputBucket    string `toml:"output_bucket"`
	PublicDomain    string `toml:"public_domain"`
}

// Catalog contains configuration for the local episode catalog database.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ScriptGen contains LLM connection settings for script generation.
type ScriptGen struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for strollcast.
//
// Configuration sections by subsystem:
//   - Paths: scratch, output, and log directories
//   - Cache: local content-addressed segment cache
//   - Voices: speaker identity to voice ID mapping
//   - Synthesis: speech synthesis API settings
//   - Normalization: loudness targets (fingerprint-relevant)
//   - Assembly: silence gaps and encoding parameters
//   - Storage: S3-compatible object store (shared cache + publishing)
//   - Catalog: local episode catalog database
//   - ScriptGen: LLM settings for script generation
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Cache         Cache         `toml:"cache"`
	Voices        Voices        `toml:"voices"`
	Synthesis     Synthesis     `toml:"synthesis"`
	Normalization Normalization `toml:"normalization"`
	Assembly      Assembly      `toml:"assembly"`
	Storage       Storage       `toml:"storage"`
	Catalog       Catalog       `toml:"catalog"`
	ScriptGen     ScriptGen     `toml:"scriptgen"`
	Logging       Logging       `toml:"logging"`
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir, c.Cache.Dir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/strollcast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("strollcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration document.
func Sample() string {
	return sampleConfig
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}

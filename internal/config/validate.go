package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is structurally usable. API credentials
// are deliberately not required here: verification and cache-only reassembly
// must work without a synthesis key, so credential checks happen at the point
// where a component actually needs them.
func (c *Config) Validate() error {
	if err := c.validateVoices(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateNormalization(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateVoices() error {
	if c.Voices.Eric == "" {
		return errors.New("voices.eric must be set")
	}
	if c.Voices.Maya == "" {
		return errors.New("voices.maya must be set")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.Stability < 0 || c.Synthesis.Stability > 1 {
		return errors.New("synthesis.stability must be between 0 and 1")
	}
	if c.Synthesis.SimilarityBoost < 0 || c.Synthesis.SimilarityBoost > 1 {
		return errors.New("synthesis.similarity_boost must be between 0 and 1")
	}
	if c.Synthesis.Style < 0 || c.Synthesis.Style > 1 {
		return errors.New("synthesis.style must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNormalization() error {
	if c.Normalization.TargetLUFS >= 0 || c.Normalization.TargetLUFS < -70 {
		return fmt.Errorf("normalization.target_lufs must be in (-70, 0), got %v", c.Normalization.TargetLUFS)
	}
	if c.Normalization.TruePeak > 0 {
		return fmt.Errorf("normalization.true_peak must be <= 0, got %v", c.Normalization.TruePeak)
	}
	if c.Normalization.LoudnessRange <= 0 {
		return fmt.Errorf("normalization.loudness_range must be positive, got %v", c.Normalization.LoudnessRange)
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if c.Assembly.UtteranceGapMS <= 0 || c.Assembly.SectionGapMS <= 0 {
		return errors.New("assembly gaps must be positive")
	}
	if c.Assembly.SectionGapMS <= c.Assembly.UtteranceGapMS {
		return errors.New("assembly.section_gap_ms must exceed assembly.utterance_gap_ms")
	}
	if c.Assembly.SampleRate <= 0 {
		return errors.New("assembly.sample_rate must be positive")
	}
	if c.Assembly.Channels != 1 && c.Assembly.Channels != 2 {
		return fmt.Errorf("assembly.channels must be 1 or 2, got %d", c.Assembly.Channels)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint is required when storage is enabled. Set R2_ENDPOINT or edit the config file")
	}
	if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
		return errors.New("storage credentials are required when storage is enabled. Set R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

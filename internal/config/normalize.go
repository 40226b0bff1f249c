package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeSynthesis()
	c.normalizeAssembly()
	c.normalizeStorage()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeScriptGen()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSynthesis() {
	if c.Synthesis.APIKey == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.Synthesis.APIKey = value
		}
	}
	c.Synthesis.BaseURL = strings.TrimRight(strings.TrimSpace(c.Synthesis.BaseURL), "/")
	if c.Synthesis.BaseURL == "" {
		c.Synthesis.BaseURL = defaultSynthesisBaseURL
	}
	c.Synthesis.ModelID = strings.TrimSpace(c.Synthesis.ModelID)
	if c.Synthesis.ModelID == "" {
		c.Synthesis.ModelID = defaultSynthesisModelID
	}
	if c.Synthesis.TimeoutSeconds <= 0 {
		c.Synthesis.TimeoutSeconds = defaultSynthesisTimeoutSeconds
	}
	if c.Synthesis.MaxConcurrent <= 0 {
		c.Synthesis.MaxConcurrent = defaultSynthesisMaxConcurrent
	}
}

func (c *Config) normalizeAssembly() {
	if c.Assembly.UtteranceGapMS <= 0 {
		c.Assembly.UtteranceGapMS = defaultUtteranceGapMS
	}
	if c.Assembly.SectionGapMS <= 0 {
		c.Assembly.SectionGapMS = defaultSectionGapMS
	}
	if c.Assembly.SampleRate <= 0 {
		c.Assembly.SampleRate = defaultSampleRate
	}
	if c.Assembly.Channels <= 0 {
		c.Assembly.Channels = defaultChannels
	}
	if strings.TrimSpace(c.Assembly.Bitrate) == "" {
		c.Assembly.Bitrate = defaultBitrate
	}
	if strings.TrimSpace(c.Assembly.FFmpegBinary) == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Assembly.FFprobeBinary) == "" {
		c.Assembly.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeStorage() {
	if c.Storage.Endpoint == "" {
		if value, ok := os.LookupEnv("R2_ENDPOINT"); ok {
			c.Storage.Endpoint = value
		}
	}
	if c.Storage.AccessKeyID == "" {
		if value, ok := os.LookupEnv("R2_ACCESS_KEY_ID"); ok {
			c.Storage.AccessKeyID = value
		}
	}
	if c.Storage.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("R2_SECRET_ACCESS_KEY"); ok {
			c.Storage.SecretAccessKey = value
		}
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	if strings.TrimSpace(c.Storage.CacheBucket) == "" {
		c.Storage.CacheBucket = defaultCacheBucket
	}
	if strings.TrimSpace(c.Storage.OutputBucket) == "" {
		c.Storage.OutputBucket = defaultOutputBucket
	}
	c.Storage.PublicDomain = strings.TrimSpace(c.Storage.PublicDomain)
}

func (c *Config) normalizeCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScriptGen() {
	if c.ScriptGen.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.ScriptGen.APIKey = value
		}
	}
	c.ScriptGen.BaseURL = strings.TrimSpace(c.ScriptGen.BaseURL)
	if c.ScriptGen.BaseURL == "" {
		c.ScriptGen.BaseURL = defaultScriptGenBaseURL
	}
	c.ScriptGen.Model = strings.TrimSpace(c.ScriptGen.Model)
	if c.ScriptGen.Model == "" {
		c.ScriptGen.Model = defaultScriptGenModel
	}
	if c.ScriptGen.TimeoutSeconds <= 0 {
		c.ScriptGen.TimeoutSeconds = defaultScriptGenTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

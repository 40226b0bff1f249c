package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"strollcast/internal/config"
	"strollcast/internal/logging"
	"strollcast/internal/segmentcache"
	"strollcast/internal/storage"
	"strollcast/internal/synthesis"
)

// commandContext lazily loads configuration and builds shared dependencies
// once per invocation.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns the --config flag value, if any.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from the loaded configuration.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// segmentStore picks the cache backend: the shared object store when storage
// is enabled, the local filesystem cache otherwise.
func (c *commandContext) segmentStore(ctx context.Context) (segmentcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return storage.NewCacheStore(client, cfg.Storage.CacheBucket), nil
	}
	return segmentcache.NewFSStore(cfg.Cache.Dir, c.ensureLogger()), nil
}

func (c *commandContext) synthesizer() (synthesis.Synthesizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return synthesis.NewClient(synthesis.Config{
		APIKey:          cfg.Synthesis.APIKey,
		BaseURL:         cfg.Synthesis.BaseURL,
		UseSpeakerBoost: cfg.Synthesis.UseSpeakerBoost,
		TimeoutSeconds:  cfg.Synthesis.TimeoutSeconds,
	}), nil
}

// lockPath is the advisory lock guarding generation runs; the work
// directory must not have parallel writers.
func (c *commandContext) lockPath() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.Paths.WorkDir, ".strollcast.lock"), nil
}

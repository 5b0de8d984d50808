package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"storyvault/internal/cache"
	"storyvault/internal/config"
	"storyvault/internal/logging"
	"storyvault/internal/services/cms"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withManager opens the store, acquires the cache lock, runs fn, and tears
// everything down afterwards. The downloader may be nil for offline-only
// commands.
func (c *commandContext) withManager(cmd *cobra.Command, downloader cache.Downloader, fn func(ctx context.Context, mgr *cache.Manager, store *cache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	store, err := cache.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr, err := cache.NewManager(cfg, store, downloader, c.logger())
	if err != nil {
		return err
	}
	defer mgr.Close()

	return fn(cmd.Context(), mgr, store)
}

func (c *commandContext) newFetcher() (cms.Fetcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cms.New(cfg)
}

func (c *commandContext) newDownloader() (cache.Downloader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewHTTPDownloader(cfg), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

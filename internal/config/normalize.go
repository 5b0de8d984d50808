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
	c.normalizeCMS()
	c.normalizeDownloads()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCMS() {
	c.CMS.BaseURL = strings.TrimRight(strings.TrimSpace(c.CMS.BaseURL), "/")
	if c.CMS.BaseURL == "" {
		c.CMS.BaseURL = defaultCMSBaseURL
	}
	c.CMS.APIToken = strings.TrimSpace(c.CMS.APIToken)
	if c.CMS.APIToken == "" {
		if value, ok := os.LookupEnv("STORYVAULT_API_TOKEN"); ok {
			c.CMS.APIToken = strings.TrimSpace(value)
		}
	}
	if c.CMS.RequestTimeout <= 0 {
		c.CMS.RequestTimeout = defaultCMSRequestTimeout
	}
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.Concurrency <= 0 {
		c.Downloads.Concurrency = defaultDownloadConcurrency
	}
	if c.Downloads.Timeout <= 0 {
		c.Downloads.Timeout = defaultDownloadTimeout
	}
	if c.Downloads.MinFreeMB < 0 {
		c.Downloads.MinFreeMB = 0
	}
	if c.Downloads.MaxSizeBytes <= 0 {
		c.Downloads.MaxSizeBytes = defaultDownloadMaxSizeBytes
	}
	c.Downloads.UserAgent = strings.TrimSpace(c.Downloads.UserAgent)
	if c.Downloads.UserAgent == "" {
		c.Downloads.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

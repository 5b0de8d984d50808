package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCMS(); err != nil {
		return err
	}
	if err := c.validateDownloads(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateCMS() error {
	parsed, err := url.Parse(c.CMS.BaseURL)
	if err != nil {
		return fmt.Errorf("cms.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("cms.base_url must be an http(s) URL, got %q", c.CMS.BaseURL)
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.Concurrency > 64 {
		return fmt.Errorf("downloads.concurrency %d is unreasonably high (max 64)", c.Downloads.Concurrency)
	}
	return nil
}

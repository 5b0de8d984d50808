package config

const (
	defaultCacheDir             = "~/.local/share/storyvault/cache"
	defaultLogDir               = "~/.local/share/storyvault/logs"
	defaultCMSBaseURL           = "https://api.artfularchives.example/v1"
	defaultCMSRequestTimeout    = 30
	defaultDownloadConcurrency  = 4
	defaultDownloadTimeout      = 120
	defaultDownloadMinFreeMB    = 256
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultUserAgent            = "storyvault/dev"
	defaultDownloadMaxSizeBytes = 64 << 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		CMS: CMS{
			BaseURL:        defaultCMSBaseURL,
			RequestTimeout: defaultCMSRequestTimeout,
		},
		Downloads: Downloads{
			Concurrency:  defaultDownloadConcurrency,
			Timeout:      defaultDownloadTimeout,
			MinFreeMB:    defaultDownloadMinFreeMB,
			MaxSizeBytes: defaultDownloadMaxSizeBytes,
			UserAgent:    defaultUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package core

import (
	"time"
)

type Config struct {
	Spotify    SpotifyConfig
	Downloader DownloaderConfig
	Output     OutputConfig
	Log        LogConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// HasCredentials reports whether both credential halves are present.
func (c SpotifyConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type DownloaderConfig struct {
	// ToolPath is the external downloader executable, resolved via the
	// system search path when left as the bare name.
	ToolPath string
	// CookiesBrowser is the browser whose cookies back fallback
	// invocations.
	CookiesBrowser string
	// Timeout bounds a single invocation.
	Timeout time.Duration
	// ListTimeout bounds a playlist listing fetch.
	ListTimeout time.Duration
}

type OutputConfig struct {
	Dir        string
	Format     MediaFormat
	LedgerName string
}

type LogConfig struct {
	Level string
}

func DefaultConfig() *Config {
	return &Config{
		Downloader: DownloaderConfig{
			ToolPath:       "yt-dlp",
			CookiesBrowser: "firefox",
			Timeout:        30 * time.Minute,
			ListTimeout:    5 * time.Minute,
		},
		Output: OutputConfig{
			Dir:        ".",
			Format:     FormatAudio,
			LedgerName: "downloaded_media.log",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

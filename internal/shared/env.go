package shared

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides mirrors the environment variables that take precedence over config.toml.
type envOverrides struct {
	SpotifySPDC   string `env:"SPOTIFY_SP_DC"`
	SPDC          string `env:"SP_DC"`
	SpotifyCookie string `env:"SPOTIFY_COOKIE"`
	Port          int    `env:"ADMIN_DATA_PORT"`
	DownloadDir   string `env:"MEDIAGRAB_DOWNLOAD_DIR"`
	ExtractorPath string `env:"YTDLP_PATH"`
}

// ApplyEnv overlays environment variables onto config.
//
// The first non-empty of SPOTIFY_SP_DC, SP_DC and SPOTIFY_COOKIE becomes the capture cookie.
func ApplyEnv(config *Config) error {
	overrides, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, cookie := range []string{overrides.SpotifySPDC, overrides.SPDC, overrides.SpotifyCookie} {
		if cookie != "" {
			config.Credentials.Spotify.Cookie = cookie
			break
		}
	}
	if overrides.Port > 0 {
		config.Server.Port = overrides.Port
	}
	if overrides.DownloadDir != "" {
		config.Downloads.Dir = overrides.DownloadDir
	}
	if overrides.ExtractorPath != "" {
		config.Extractor.Binary = overrides.ExtractorPath
	}
	return nil
}

// SpotifyCookie resolves the capture cookie, reading the configured cURL file when no cookie is set.
//
// Returns an empty string when neither source yields a cookie.
func (c *Config) SpotifyCookie() (string, error) {
	spotify := c.Credentials.Spotify
	if spotify.Cookie != "" {
		return spotify.Cookie, nil
	}
	if spotify.CurlPath == "" {
		return "", nil
	}

	parsed, err := ParseCurlFile(spotify.CurlPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if value := parsed.CookieValue("sp_dc"); value != "" {
		return value, nil
	}
	return parsed.Cookie, nil
}

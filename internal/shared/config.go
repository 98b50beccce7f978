package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Downloads   DownloadsConfig   `toml:"downloads"`
	Credentials CredentialsConfig `toml:"credentials"`
	Endpoints   EndpointsConfig   `toml:"endpoints"`
	Extractor   ExtractorConfig   `toml:"extractor"`
	Database    DatabaseConfig    `toml:"database"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// RequestTimeout bounds a single job resolution, independent of the client connection.
	RequestTimeout Duration `toml:"request_timeout"`
}

// DownloadsConfig controls where captured assets live and for how long.
type DownloadsConfig struct {
	Dir string   `toml:"dir"`
	TTL Duration `toml:"ttl"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig holds the session cookie used by local capture.
//
// CurlPath points at a cURL command copied from browser devtools; its cookie is used when Cookie is empty.
type SpotifyConfig struct {
	Cookie   string `toml:"cookie"`
	CurlPath string `toml:"curl_path"`
}

// EndpointsConfig lists the upstream services the pipeline talks to.
type EndpointsConfig struct {
	LookupPrimary   string `toml:"lookup_primary"`
	LookupSecondary string `toml:"lookup_secondary"`
	OEmbed          string `toml:"oembed"`
	YouTubeProxy    string `toml:"youtube_proxy"`
	SpotifyToken    string `toml:"spotify_token"`
	SpotifyAPI      string `toml:"spotify_api"`
	SpotifyCapture  string `toml:"spotify_capture"`
}

// ExtractorConfig configures the yt-dlp subprocess.
type ExtractorConfig struct {
	Binary  string   `toml:"binary"`
	Timeout Duration `toml:"timeout"`
}

// DatabaseConfig contains database connection settings for the metadata memo.
//
// An empty Path disables the memo.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RateLimitConfig throttles job submissions across all clients.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Duration is a [time.Duration] that decodes from TOML strings like "6h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Missing keys keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
//
// Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 8890 {
			t.Errorf("expected server port 8890, got %d", config.Server.Port)
		}

		if config.Downloads.Dir != "tmp/downloads" {
			t.Errorf("expected downloads dir tmp/downloads, got %s", config.Downloads.Dir)
		}

		if config.Downloads.TTL.Duration != 6*time.Hour {
			t.Errorf("expected downloads ttl 6h, got %v", config.Downloads.TTL)
		}

		if config.Extractor.Binary != "yt-dlp" {
			t.Errorf("expected extractor binary yt-dlp, got %s", config.Extractor.Binary)
		}

		if config.Endpoints.LookupPrimary != "https://api.spotifydown.com/download" {
			t.Errorf("unexpected primary lookup endpoint %s", config.Endpoints.LookupPrimary)
		}

		if config.Server.Addr() != "0.0.0.0:8890" {
			t.Errorf("expected addr 0.0.0.0:8890, got %s", config.Server.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Downloads.Dir != DefaultConfig().Downloads.Dir {
			t.Errorf("created config downloads dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
port = 9000

[downloads]
dir = "/srv/downloads"
ttl = "30m"

[credentials.spotify]
cookie = "sp_dc=from-file"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 9000 {
			t.Errorf("expected server port 9000, got %d", config.Server.Port)
		}

		if config.Downloads.TTL.Duration != 30*time.Minute {
			t.Errorf("expected ttl 30m, got %v", config.Downloads.TTL)
		}

		if config.Server.Host != "0.0.0.0" {
			t.Errorf("expected unset host to keep default, got %s", config.Server.Host)
		}

		if config.Credentials.Spotify.Cookie != "sp_dc=from-file" {
			t.Errorf("expected cookie from file, got %s", config.Credentials.Spotify.Cookie)
		}
	})

	t.Run("LoadConfig Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[downloads]\nttl = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("Cookie Precedence", func(t *testing.T) {
		t.Setenv("SPOTIFY_SP_DC", "")
		t.Setenv("SP_DC", "second")
		t.Setenv("SPOTIFY_COOKIE", "third")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.Cookie != "second" {
			t.Errorf("expected SP_DC to win, got %s", config.Credentials.Spotify.Cookie)
		}
	})

	t.Run("Port And Directories", func(t *testing.T) {
		t.Setenv("ADMIN_DATA_PORT", "9999")
		t.Setenv("MEDIAGRAB_DOWNLOAD_DIR", "/var/tmp/grab")
		t.Setenv("YTDLP_PATH", "/opt/bin/yt-dlp")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", config.Server.Port)
		}
		if config.Downloads.Dir != "/var/tmp/grab" {
			t.Errorf("expected download dir override, got %s", config.Downloads.Dir)
		}
		if config.Extractor.Binary != "/opt/bin/yt-dlp" {
			t.Errorf("expected extractor override, got %s", config.Extractor.Binary)
		}
	})

	t.Run("Invalid Port", func(t *testing.T) {
		t.Setenv("ADMIN_DATA_PORT", "not-a-port")

		err := ApplyEnv(DefaultConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSpotifyCookie(t *testing.T) {
	t.Run("Configured Cookie", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Spotify.Cookie = "abc"

		cookie, err := config.SpotifyCookie()
		if err != nil || cookie != "abc" {
			t.Errorf("expected abc, got %q (%v)", cookie, err)
		}
	})

	t.Run("From Curl File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "curl.sh")
		if err := os.WriteFile(path, []byte(`curl -b 'sp_t=x; sp_dc=fromcurl' https://open.spotify.com/`), 0644); err != nil {
			t.Fatalf("failed to write curl file: %v", err)
		}

		config := DefaultConfig()
		config.Credentials.Spotify.CurlPath = path

		cookie, err := config.SpotifyCookie()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cookie != "fromcurl" {
			t.Errorf("expected fromcurl, got %q", cookie)
		}
	})

	t.Run("Unreadable Curl File", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Spotify.CurlPath = filepath.Join(t.TempDir(), "missing.sh")

		if _, err := config.SpotifyCookie(); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("None", func(t *testing.T) {
		cookie, err := DefaultConfig().SpotifyCookie()
		if err != nil || cookie != "" {
			t.Errorf("expected empty cookie, got %q (%v)", cookie, err)
		}
	})
}

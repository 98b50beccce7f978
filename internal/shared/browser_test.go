package shared

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadTarget(t *testing.T) {
	t.Run("URLs Pass Through", func(t *testing.T) {
		for _, target := range []string{"https://cdn.example.com/a.mp3", "http://localhost:8890/api/tools/downloads/1", "file:///tmp/a.ogg"} {
			got, err := DownloadTarget(target)
			if err != nil || got != target {
				t.Errorf("expected %s unchanged, got %s, %v", target, got, err)
			}
		}
	})

	t.Run("Local Path", func(t *testing.T) {
		dir := t.TempDir()
		got, err := DownloadTarget(filepath.Join(dir, "job-1-song.ogg"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/job-1-song.ogg") {
			t.Errorf("expected file URL, got %s", got)
		}
	})
}

func TestOpenerArgs(t *testing.T) {
	tests := []struct {
		goos string
		cmd  string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			args, err := openerArgs(tt.goos, "https://x")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if args[0] != tt.cmd || args[len(args)-1] != "https://x" {
				t.Errorf("expected %s ... https://x, got %v", tt.cmd, args)
			}
		})
	}

	t.Run("Unsupported", func(t *testing.T) {
		original := getRuntime
		defer func() { getRuntime = original }()
		getRuntime = func() string { return "plan9" }

		if err := OpenDownload("https://x"); err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})
}

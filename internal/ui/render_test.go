package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/tasks"
)

func TestJob(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(6 * time.Hour)

	t.Run("Local Asset", func(t *testing.T) {
		job := &models.Job{
			ID:          "job-1",
			Provider:    models.ProviderSpotify,
			Quality:     models.Quality320k,
			Status:      models.StatusReady,
			Title:       "Song — Band",
			DownloadURL: models.DownloadPath("job-1"),
			ExpiresAt:   &expires,
			Note:        "Served by local capture (expires in 6 hours)",
		}

		out := Job(PlainPalette(), job, "/tmp/downloads/job-1-Song-Band.ogg", now)
		for _, want := range []string{
			"Song — Band",
			"✓ ready spotify · 320k · job-1",
			"Download: /api/tools/downloads/job-1",
			"File:     /tmp/downloads/job-1-Song-Band.ogg",
			"Expires:  6 hours from now",
			"Served by local capture",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("External Link", func(t *testing.T) {
		job := &models.Job{
			ID:          "job-2",
			Provider:    models.ProviderYouTube,
			URL:         "https://youtu.be/abc",
			Status:      models.StatusReady,
			DownloadURL: "https://piped.video/download?url=x",
		}

		out := Job(PlainPalette(), job, "", now)
		if !strings.HasPrefix(out, "https://youtu.be/abc") {
			t.Errorf("expected URL as heading, got:\n%s", out)
		}
		if strings.Contains(out, "File:") || strings.Contains(out, "Expires:") {
			t.Errorf("expected no file or expiry lines, got:\n%s", out)
		}
	})
}

func TestProgress(t *testing.T) {
	u := tasks.ProgressUpdate{Phase: tasks.StrategyFailed, Message: "[1/3] ✗ SpotifyDown: blocked"}
	if got := Progress(PlainPalette(), u); got != u.Message {
		t.Errorf("expected %q, got %q", u.Message, got)
	}
}

func TestFailure(t *testing.T) {
	t.Run("Plain Error", func(t *testing.T) {
		if got := Failure(PlainPalette(), errors.New("boom")); got != "✗ boom\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("Chain Error", func(t *testing.T) {
		err := &tasks.ChainError{
			Subject: "Spotify providers",
			Failures: []tasks.StrategyFailure{
				{Strategy: "SpotifyDown", Err: errors.New("SpotifyDown rejected the request")},
				{Strategy: "YouTube search", Err: errors.New("yt-dlp missing")},
			},
			Hint: tasks.CredentialHint,
		}

		out := Failure(PlainPalette(), err)
		want := "✗ All Spotify providers failed\n" +
			"  1. SpotifyDown: SpotifyDown rejected the request\n" +
			"  2. YouTube search: yt-dlp missing\n" +
			strings.TrimSpace(tasks.CredentialHint) + "\n"
		if out != want {
			t.Errorf("expected:\n%s\ngot:\n%s", want, out)
		}
	})
}

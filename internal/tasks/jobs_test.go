package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
)

func TestValidate(t *testing.T) {
	tt := []struct {
		name     string
		req      models.JobRequest
		wantKind error
		wantMsg  string
	}{
		{"Unknown Provider", models.JobRequest{Provider: "soundcloud", URL: "https://x"}, shared.ErrInvalidProvider, "Provider must be youtube or spotify"},
		{"Missing Provider", models.JobRequest{URL: "https://x"}, shared.ErrInvalidProvider, "Provider must be youtube or spotify"},
		{"Missing URL", models.JobRequest{Provider: "spotify", URL: "   "}, shared.ErrInvalidURL, "Provide a media URL to download"},
		{"Bad Spotify URL", models.JobRequest{Provider: "spotify", URL: "https://open.spotify.com/artist/abc"}, shared.ErrInvalidURL, "Expected a Spotify track/album/playlist URL"},
		{"YouTube URL For Spotify", models.JobRequest{Provider: "Spotify", URL: "https://youtu.be/abc"}, shared.ErrInvalidURL, "Expected a Spotify track/album/playlist URL"},
		{"Bad YouTube URL", models.JobRequest{Provider: "youtube", URL: "https://vimeo.com/1"}, shared.ErrInvalidURL, "Expected a YouTube video URL"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := Validate(tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tc.wantMsg {
				t.Errorf("expected message %q, got %q", tc.wantMsg, err.Error())
			}
			if !errors.Is(err, tc.wantKind) || !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected %v wrapping ErrInvalidInput, got %v", tc.wantKind, err)
			}
		})
	}

	t.Run("Normalizes", func(t *testing.T) {
		provider, u, q, err := Validate(models.JobRequest{Provider: " YouTube ", URL: "  https://www.youtube.com/watch?v=1 ", Quality: "LOSSLESS flac"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if provider != models.ProviderYouTube || u != "https://www.youtube.com/watch?v=1" || q != models.QualityLossless {
			t.Errorf("unexpected normalization: %s %s %s", provider, u, q)
		}
	})

	t.Run("Accepted Spotify Shapes", func(t *testing.T) {
		for _, u := range []string{
			"https://open.spotify.com/track/abc",
			"http://open.spotify.com/album/abc",
			"https://open.spotify.com/playlist/abc?si=1",
		} {
			if _, _, _, err := Validate(models.JobRequest{Provider: "spotify", URL: u}); err != nil {
				t.Errorf("expected %s to be accepted, got %v", u, err)
			}
		}
	})
}

func TestYoutubeLinkBuilder(t *testing.T) {
	b := NewYoutubeLinkBuilder("")
	source := "https://www.youtube.com/watch?v=abc&t=10"

	t.Run("Best Quality", func(t *testing.T) {
		result := b.Build(source, models.Quality320k)
		want := "https://piped.video/download?downloadFormat=audio&quality=best&url=" + url.QueryEscape(source)
		if result.DownloadURL != want {
			t.Errorf("expected %s, got %s", want, result.DownloadURL)
		}
		if result.ExpiresAt != nil {
			t.Error("expected no expiry for proxy links")
		}
		if result.Note != "Uses Piped audio endpoint. Swap with self-hosted ytdlp service when ready." {
			t.Errorf("unexpected note %q", result.Note)
		}
	})

	t.Run("Medium Quality", func(t *testing.T) {
		result := b.Build(source, models.Quality256k)
		if !strings.Contains(result.DownloadURL, "quality=medium") {
			t.Errorf("expected medium quality, got %s", result.DownloadURL)
		}
	})

	t.Run("Lossless Is Best", func(t *testing.T) {
		result := b.Build(source, models.QualityLossless)
		if !strings.Contains(result.DownloadURL, "quality=best") {
			t.Errorf("expected best quality, got %s", result.DownloadURL)
		}
	})
}

func TestJobBuilder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	newBuilder := func(strategies ...Strategy) *JobBuilder {
		b := NewJobBuilder(NewChain("Spotify providers", quietLogger, strategies...), nil, quietLogger)
		b.now = func() time.Time { return fixed }
		b.newID = func() string { return "job-1" }
		return b
	}

	t.Run("Invalid Input Calls Nothing", func(t *testing.T) {
		s := &fakeStrategy{name: "a", result: &models.StrategyResult{DownloadURL: "x"}}
		b := newBuilder(s)

		for _, req := range []models.JobRequest{
			{Provider: "spotify", URL: "https://example.com/track/1"},
			{Provider: "tidal", URL: "https://open.spotify.com/track/1"},
			{Provider: "spotify"},
		} {
			_, err := b.Build(ctx, req, nil)
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Errorf("expected *InputError for %+v, got %v", req, err)
			}
		}
		if s.calls != 0 {
			t.Errorf("expected zero strategy calls, got %d", s.calls)
		}
	})

	t.Run("Spotify Job", func(t *testing.T) {
		expires := fixed.Add(6 * time.Hour)
		b := newBuilder(&fakeStrategy{name: "a", result: &models.StrategyResult{
			DownloadURL: models.DownloadPath("job-1"),
			Title:       "Song — Band",
			Artwork:     "https://img/1",
			ExpiresAt:   &expires,
			Note:        "n",
		}})

		job, err := b.Build(ctx, models.JobRequest{Provider: "spotify", URL: " https://open.spotify.com/track/abc ", Quality: "256"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if job.ID != "job-1" || job.Provider != models.ProviderSpotify || job.Status != models.StatusReady {
			t.Errorf("unexpected job identity %+v", job)
		}
		if job.URL != "https://open.spotify.com/track/abc" || job.Quality != models.Quality256k {
			t.Errorf("expected normalized url and quality, got %s %s", job.URL, job.Quality)
		}
		if job.Title != "Song — Band" || job.Artwork != "https://img/1" || job.Note != "n" {
			t.Errorf("expected strategy fields verbatim, got %+v", job)
		}
		if job.ExpiresAt == nil || !job.ExpiresAt.Equal(expires) || !job.HasLocalAsset() {
			t.Errorf("expected local asset expiry, got %v", job.ExpiresAt)
		}
		if !job.QueuedAt.Equal(fixed) {
			t.Errorf("expected queuedAt %v, got %v", fixed, job.QueuedAt)
		}
	})

	t.Run("Default Note", func(t *testing.T) {
		b := newBuilder(&fakeStrategy{name: "a", result: &models.StrategyResult{DownloadURL: "https://cdn/x"}})
		job, err := b.Build(ctx, models.JobRequest{Provider: "spotify", URL: "https://open.spotify.com/track/abc"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Note != DefaultJobNote {
			t.Errorf("expected default note, got %q", job.Note)
		}
		if job.Quality != models.Quality320k {
			t.Errorf("expected 320k default, got %s", job.Quality)
		}
	})

	t.Run("YouTube Job Skips Chain", func(t *testing.T) {
		s := &fakeStrategy{name: "a"}
		b := newBuilder(s)
		job, err := b.Build(ctx, models.JobRequest{Provider: "youtube", URL: "https://youtu.be/abc", Quality: "256k"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.calls != 0 {
			t.Error("expected chain not to run for youtube")
		}
		if !strings.HasPrefix(job.DownloadURL, "https://piped.video/download?") || job.ExpiresAt != nil {
			t.Errorf("unexpected youtube job %+v", job)
		}
		if job.HasLocalAsset() {
			t.Error("expected youtube job to reference an external url")
		}
	})

	t.Run("Reports Validation First", func(t *testing.T) {
		b := newBuilder(&fakeStrategy{name: "a"})
		progress := make(chan ProgressUpdate, 8)
		if _, err := b.Build(ctx, models.JobRequest{Provider: "youtube", URL: "https://youtu.be/abc"}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		first, ok := <-progress
		if !ok {
			t.Fatal("expected a progress update")
		}
		if first.Phase != ValidateRequest || first.Phase.String() != "validate" {
			t.Errorf("expected validate phase first, got %v", first.Phase)
		}
		if first.Message != "Validating youtube request..." {
			t.Errorf("unexpected message %q", first.Message)
		}
	})

	t.Run("Chain Failure", func(t *testing.T) {
		b := newBuilder(&fakeStrategy{name: "a", err: errors.New("r1")})
		_, err := b.Build(ctx, models.JobRequest{Provider: "spotify", URL: "https://open.spotify.com/track/abc"}, nil)
		if !errors.Is(err, shared.ErrChainExhausted) {
			t.Errorf("expected ErrChainExhausted, got %v", err)
		}
	})
}

// TestSpotifyFallthrough wires the real lookup clients against failing upstreams and checks the aggregate.
func TestSpotifyFallthrough(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer rejecting.Close()

	committer, assets := newTestCommitter(t)
	metadata := &fakeMetadata{err: errUpstream}
	extractor := &fakeExtractor{err: shared.ErrExtractorUnavailable}

	chain := NewSpotifyChain(SpotifyChainOpts{
		Lookups: []services.LookupClient{
			services.NewPrimaryLookup(rejecting.URL, rejecting.Client()),
			services.NewSecondaryLookup(rejecting.URL, rejecting.Client()),
		},
		Metadata:  metadata,
		Extractor: extractor,
		Committer: committer,
		Logger:    quietLogger,
	})
	b := NewJobBuilder(chain, nil, quietLogger)

	_, err := b.Build(context.Background(), models.JobRequest{Provider: "spotify", URL: "https://open.spotify.com/track/abc"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "All Spotify providers failed. Details: ") {
		t.Errorf("unexpected prefix: %s", msg)
	}
	for _, part := range []string{"SpotifyDown rejected the request", "Spotify mirror rejected the request", "YouTube search fallback failed"} {
		if !strings.Contains(msg, part) {
			t.Errorf("expected %q in %s", part, msg)
		}
	}
	if strings.Index(msg, "SpotifyDown") > strings.Index(msg, "Spotify mirror") || strings.Index(msg, "Spotify mirror") > strings.Index(msg, "YouTube search") {
		t.Errorf("expected reasons in attempt order: %s", msg)
	}
	if strings.Count(msg, " | ") != 2 {
		t.Errorf("expected three reasons, got %s", msg)
	}
	if !strings.HasSuffix(msg, CredentialHint) {
		t.Errorf("expected credential hint suffix: %s", msg)
	}
	if assets.Len() != 0 {
		t.Error("expected no asset after fallthrough")
	}
}

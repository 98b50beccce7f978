package tasks

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// DefaultJobNote is used when a strategy does not supply its own note.
const DefaultJobNote = "Queued via admin console. Replace with internal media pipeline once ready."

var (
	spotifyURLPattern = regexp.MustCompile(`^https?://open\.spotify\.com/(track|album|playlist)/`)
	youtubeURLPattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/`)
)

// InputError is a request rejected before any collaborator runs.
// Its message is meant for clients as-is.
type InputError struct {
	Kind    error
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return e.Kind }

// JobBuilder validates a [models.JobRequest] and resolves it into a [models.Job].
type JobBuilder struct {
	spotify *Chain
	youtube *YoutubeLinkBuilder
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// NewJobBuilder creates a JobBuilder dispatching Spotify jobs to spotify and YouTube jobs to youtube.
func NewJobBuilder(spotify *Chain, youtube *YoutubeLinkBuilder, logger *log.Logger) *JobBuilder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if youtube == nil {
		youtube = NewYoutubeLinkBuilder("")
	}
	return &JobBuilder{
		spotify: spotify,
		youtube: youtube,
		logger:  logger,
		now:     time.Now,
		newID:   shared.GenerateID,
	}
}

// Validate checks req and returns its normalized provider, URL and quality.
// Failures are [*InputError] values wrapping [shared.ErrInvalidInput].
func Validate(req models.JobRequest) (models.Provider, string, models.Quality, error) {
	provider, ok := models.ParseProvider(req.Provider)
	if !ok {
		return "", "", "", &InputError{Kind: shared.ErrInvalidProvider, Message: "Provider must be youtube or spotify"}
	}

	sourceURL := strings.TrimSpace(req.URL)
	if sourceURL == "" {
		return "", "", "", &InputError{Kind: shared.ErrInvalidURL, Message: "Provide a media URL to download"}
	}

	switch provider {
	case models.ProviderSpotify:
		if !spotifyURLPattern.MatchString(sourceURL) {
			return "", "", "", &InputError{Kind: shared.ErrInvalidURL, Message: "Expected a Spotify track/album/playlist URL"}
		}
	case models.ProviderYouTube:
		if !youtubeURLPattern.MatchString(sourceURL) {
			return "", "", "", &InputError{Kind: shared.ErrInvalidURL, Message: "Expected a YouTube video URL"}
		}
	}

	return provider, sourceURL, models.NormalizeQuality(req.Quality), nil
}

// Build validates req, resolves it and returns a ready job.
//
// Validation failures return an [*InputError] before any collaborator is called.
// A Spotify job whose every strategy fails returns the chain's [*ChainError].
func (b *JobBuilder) Build(ctx context.Context, req models.JobRequest, progress chan<- ProgressUpdate) (*models.Job, error) {
	sendProgress(progress, validateUpdate(req.Provider))

	provider, sourceURL, quality, err := Validate(req)
	if err != nil {
		return nil, err
	}

	id := b.newID()
	logger := shared.WithLogger(b.logger, "job", id, "provider", provider)

	var result *models.StrategyResult
	switch provider {
	case models.ProviderSpotify:
		result, err = b.spotify.Run(ctx, Request{ID: id, URL: sourceURL, Quality: quality, Progress: progress})
		if err != nil {
			logger.Error("job failed", "url", sourceURL, "error", err)
			return nil, err
		}
	case models.ProviderYouTube:
		sendProgress(progress, buildLinkUpdate(string(quality)))
		result = b.youtube.Build(sourceURL, quality)
	}

	job := &models.Job{
		ID:          id,
		Provider:    provider,
		URL:         sourceURL,
		Quality:     quality,
		Status:      models.StatusReady,
		Title:       result.Title,
		Artwork:     result.Artwork,
		DownloadURL: result.DownloadURL,
		ExpiresAt:   result.ExpiresAt,
		Note:        result.Note,
		QueuedAt:    b.now().UTC(),
	}
	if job.Note == "" {
		job.Note = DefaultJobNote
	}

	logger.Info("job ready", "title", job.Title, "local", job.HasLocalAsset())
	return job, nil
}

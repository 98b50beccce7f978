package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
)

const (
	// DefaultCaptureTitle is used when a strategy cannot resolve a display title.
	DefaultCaptureTitle = "Spotify capture"

	captureNote = "Served by local capture (expires in 6 hours)"
	searchNote  = "YouTube search fallback via yt-dlp. Quality may vary. Expires in 6 hours."
	captureExt  = "ogg"
)

// CaptureStrategy streams audio through an authenticated [services.MediaClient].
//
// One session is shared by every job in the process. It is dropped only when the upstream rejects
// its token or the token expires, so the next attempt authenticates again.
type CaptureStrategy struct {
	client    services.MediaClient
	cookie    string
	committer *Committer
	logger    *log.Logger

	mu      sync.Mutex
	session *services.CaptureSession
}

// NewCaptureStrategy creates a CaptureStrategy authenticating with cookie.
func NewCaptureStrategy(client services.MediaClient, cookie string, committer *Committer, logger *log.Logger) *CaptureStrategy {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CaptureStrategy{client: client, cookie: cookie, committer: committer, logger: logger}
}

func (s *CaptureStrategy) Name() string { return "local capture" }

// Attempt implements [Strategy].
func (s *CaptureStrategy) Attempt(ctx context.Context, req Request) (*models.StrategyResult, error) {
	session, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("local capture failed: %w", err)
	}

	result, err := s.capture(ctx, session, req)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) || !session.Valid() {
			s.drop(session)
		}
		return nil, fmt.Errorf("local capture failed: %w", err)
	}
	return result, nil
}

func (s *CaptureStrategy) capture(ctx context.Context, session *services.CaptureSession, req Request) (*models.StrategyResult, error) {
	stream, err := s.client.OpenAudioStream(ctx, session, req.URL, services.FormatForQuality(req.Quality))
	if err != nil {
		return nil, err
	}

	temp := s.committer.TempPath(req.ID, captureExt)
	_, err = s.committer.WriteTemp(temp, stream)
	stream.Close()
	if err != nil {
		return nil, err
	}

	title, artwork := DefaultCaptureTitle, ""
	if info, err := s.client.FetchMetadata(ctx, session, req.URL); err != nil {
		s.logger.Warn("failed to read capture metadata", "job", req.ID, "error", err)
	} else if info != nil {
		if info.Title != "" {
			title = info.Title
		}
		artwork = info.Artwork
	}

	asset, err := s.committer.Commit(req.ID, temp, title, captureExt, req.Progress)
	if err != nil {
		return nil, err
	}

	return &models.StrategyResult{
		DownloadURL: models.DownloadPath(req.ID),
		Title:       title,
		Artwork:     artwork,
		ExpiresAt:   &asset.ExpiresAt,
		Note:        captureNote,
	}, nil
}

// acquire returns the shared session, authenticating when there is none or it has expired.
func (s *CaptureStrategy) acquire(ctx context.Context) (*services.CaptureSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.Valid() {
		return s.session, nil
	}

	session, err := s.client.Authenticate(ctx, s.cookie)
	if err != nil {
		s.session = nil
		return nil, err
	}
	s.session = session
	return session, nil
}

// drop forgets session if it is still the shared one.
func (s *CaptureStrategy) drop(session *services.CaptureSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == session {
		s.session = nil
	}
}

// LookupStrategy adapts a [services.LookupClient] to [Strategy]. No local file is written.
type LookupStrategy struct {
	client services.LookupClient
}

// NewLookupStrategy wraps client.
func NewLookupStrategy(client services.LookupClient) *LookupStrategy {
	return &LookupStrategy{client: client}
}

func (s *LookupStrategy) Name() string { return s.client.Name() }

// Attempt implements [Strategy].
func (s *LookupStrategy) Attempt(ctx context.Context, req Request) (*models.StrategyResult, error) {
	res, err := s.client.Lookup(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if res == nil || res.DownloadURL == "" {
		return nil, fmt.Errorf("%w: Spotify provider returned no download link", shared.ErrStrategyFailed)
	}
	return &models.StrategyResult{
		DownloadURL: res.DownloadURL,
		Title:       res.Title,
		Artwork:     res.Artwork,
		ExpiresAt:   res.ExpiresAt,
		Note:        res.Note,
	}, nil
}

// SearchStrategy finds the track on YouTube by its oEmbed title and downloads it with an [services.Extractor].
type SearchStrategy struct {
	metadata  services.MetadataClient
	extractor services.Extractor
	committer *Committer
	logger    *log.Logger
}

// NewSearchStrategy creates a SearchStrategy.
func NewSearchStrategy(metadata services.MetadataClient, extractor services.Extractor, committer *Committer, logger *log.Logger) *SearchStrategy {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SearchStrategy{metadata: metadata, extractor: extractor, committer: committer, logger: logger}
}

func (s *SearchStrategy) Name() string { return "YouTube search" }

// Attempt implements [Strategy]. Metadata failures degrade the query; they do not fail the attempt.
func (s *SearchStrategy) Attempt(ctx context.Context, req Request) (*models.StrategyResult, error) {
	if err := s.committer.EnsureDir(); err != nil {
		return nil, fmt.Errorf("YouTube search fallback failed: %w", err)
	}

	meta, err := s.metadata.Describe(ctx, req.URL)
	if err != nil {
		s.logger.Warn("oembed lookup failed, searching by url", "job", req.ID, "error", err)
		meta = models.TrackMetadata{SourceURL: req.URL}
	}

	query := services.SearchQuery(meta, req.URL)
	s.logger.Debug("searching for audio", "job", req.ID, "query", query)

	path, err := s.extractor.SearchBestAudio(ctx, query, s.committer.Dir(), req.ID)
	if err != nil {
		return nil, fmt.Errorf("YouTube search fallback failed: %w", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		os.Remove(path)
		return nil, fmt.Errorf("YouTube search fallback failed: %w", errors.New("extractor output has no extension"))
	}

	title := meta.Title
	if title == "" {
		title = DefaultCaptureTitle
	}

	asset, err := s.committer.Commit(req.ID, path, title, ext, req.Progress)
	if err != nil {
		return nil, fmt.Errorf("YouTube search fallback failed: %w", err)
	}

	return &models.StrategyResult{
		DownloadURL: models.DownloadPath(req.ID),
		Title:       title,
		Artwork:     meta.Thumbnail,
		ExpiresAt:   &asset.ExpiresAt,
		Note:        searchNote,
	}, nil
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// DefaultMetadataMaxAge bounds how long a stored row answers without a refetch.
const DefaultMetadataMaxAge = 7 * 24 * time.Hour

// CachedMetadataClient implements [services.MetadataClient] on top of a [MetadataRepository].
//
// Fresh rows are served from the database. Misses and stale rows go to the upstream client,
// and non-empty answers are written back. Storage failures are logged and never fail a describe.
type CachedMetadataClient struct {
	repo     *MetadataRepository
	upstream services.MetadataClient
	maxAge   time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewCachedMetadataClient wraps upstream. A non-positive maxAge uses [DefaultMetadataMaxAge].
func NewCachedMetadataClient(repo *MetadataRepository, upstream services.MetadataClient, maxAge time.Duration, logger *log.Logger) *CachedMetadataClient {
	if maxAge <= 0 {
		maxAge = DefaultMetadataMaxAge
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CachedMetadataClient{repo: repo, upstream: upstream, maxAge: maxAge, logger: logger, now: time.Now}
}

// Describe implements [services.MetadataClient].
func (c *CachedMetadataClient) Describe(ctx context.Context, sourceURL string) (models.TrackMetadata, error) {
	stored, err := c.repo.Get(ctx, sourceURL)
	switch {
	case err == nil && c.now().Sub(stored.FetchedAt) < c.maxAge:
		c.logger.Debug("metadata cache hit", "url", sourceURL)
		return *stored, nil
	case err != nil && !errors.Is(err, shared.ErrMetadataNotFound):
		c.logger.Warn("metadata cache read failed", "url", sourceURL, "error", err)
	}

	meta, err := c.upstream.Describe(ctx, sourceURL)
	if err != nil {
		if stored != nil {
			c.logger.Warn("serving stale metadata after upstream failure", "url", sourceURL, "error", err)
			return *stored, nil
		}
		return meta, err
	}

	if !meta.Empty() {
		if err := c.repo.Put(ctx, meta); err != nil {
			c.logger.Warn("metadata cache write failed", "url", sourceURL, "error", err)
		}
	}
	return meta, nil
}

package main

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/mediagrab/internal/cache"
	"github.com/desertthunder/mediagrab/internal/repositories"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/desertthunder/mediagrab/internal/tasks"
)

// pipeline is the wired job resolution stack shared by serve and resolve.
type pipeline struct {
	assets    *cache.AssetCache
	committer *tasks.Committer
	builder   *tasks.JobBuilder
	chain     *tasks.Chain
	db        *sql.DB
}

// newPipeline wires services, cache, committer and strategies from config.
//
// The metadata memo is optional: an empty database path or an open failure leaves oEmbed uncached.
func (r *Runner) newPipeline(config *shared.Config) (*pipeline, error) {
	logger := r.logger

	cookie, err := config.SpotifyCookie()
	if err != nil {
		logger.Warn("ignoring unreadable capture credentials", "error", err)
		cookie = ""
	}

	assets := cache.NewAssetCache(config.Downloads.TTL.Duration, logger)
	committer := tasks.NewCommitter(config.Downloads.Dir, assets, logger)
	if err := committer.EnsureDir(); err != nil {
		assets.Close()
		return nil, fmt.Errorf("failed to prepare downloads directory: %w", err)
	}

	p := &pipeline{assets: assets, committer: committer}

	var metadata services.MetadataClient = services.NewOEmbedClient(config.Endpoints.OEmbed, r.httpClient)
	if config.Database.Path != "" {
		db, err := shared.OpenMetadataStore(config.Database)
		if err != nil {
			logger.Warn("metadata memo disabled", "path", config.Database.Path, "error", err)
		} else {
			p.db = db
			repo := repositories.NewMetadataRepository(db)
			metadata = repositories.NewCachedMetadataClient(repo, metadata, repositories.DefaultMetadataMaxAge, logger)
		}
	}

	capture := services.NewSpotifyCaptureClient(services.SpotifyEndpoints{
		Token:   config.Endpoints.SpotifyToken,
		API:     config.Endpoints.SpotifyAPI,
		Capture: config.Endpoints.SpotifyCapture,
	}, r.httpClient)

	p.chain = tasks.NewSpotifyChain(tasks.SpotifyChainOpts{
		Capture: capture,
		Cookie:  cookie,
		Lookups: []services.LookupClient{
			services.NewPrimaryLookup(config.Endpoints.LookupPrimary, r.httpClient),
			services.NewSecondaryLookup(config.Endpoints.LookupSecondary, r.httpClient),
		},
		Metadata:  metadata,
		Extractor: services.NewYTDLPExtractor(config.Extractor.Binary, config.Extractor.Timeout.Duration),
		Committer: committer,
		Logger:    logger,
	})

	p.builder = tasks.NewJobBuilder(p.chain, tasks.NewYoutubeLinkBuilder(config.Endpoints.YouTubeProxy), logger)

	logger.Debug("pipeline ready",
		"strategies", p.chain.Names(),
		"downloads", committer.Dir(),
		"ttl", assets.TTL(),
		"memo", p.db != nil,
	)
	return p, nil
}

// Close stops asset timers and closes the metadata store. Committed files stay on disk.
func (p *pipeline) Close() error {
	p.assets.Close()
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

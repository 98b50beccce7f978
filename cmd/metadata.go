package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mediagrab/internal/formatter"
	"github.com/desertthunder/mediagrab/internal/repositories"
	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/urfave/cli/v3"
)

// openMetadata opens the configured metadata store.
func (r *Runner) openMetadata(cmd *cli.Command) (*sql.DB, *repositories.MetadataRepository, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	db, err := shared.OpenMetadataStore(config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, repositories.NewMetadataRepository(db), nil
}

// MetadataList prints memoized oEmbed lookups, newest first.
func (r *Runner) MetadataList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openMetadata(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := repo.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case cmd.Bool("json"):
		return r.writeJSON(rows, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err = formatter.MetadataToCSV(rows)
	default:
		data, err = formatter.MetadataToText(rows, time.Now())
	}
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// MetadataPrune deletes memoized rows fetched more than --older-than ago.
func (r *Runner) MetadataPrune(ctx context.Context, cmd *cli.Command) error {
	return r.pruneMetadata(ctx, cmd, time.Now().Add(-cmd.Duration("older-than")))
}

// MetadataClear deletes every memoized row.
func (r *Runner) MetadataClear(ctx context.Context, cmd *cli.Command) error {
	return r.pruneMetadata(ctx, cmd, time.Time{})
}

func (r *Runner) pruneMetadata(ctx context.Context, cmd *cli.Command, cutoff time.Time) error {
	db, repo, err := r.openMetadata(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := repo.Prune(ctx, cutoff)
	if err != nil {
		return err
	}

	r.logger.Info("pruned metadata", "removed", removed, "all", cutoff.IsZero())
	return r.writePlain("%s\n", r.painter.OK(fmt.Sprintf("✓ Removed %d cached entries", removed)))
}

// MetadataDelete removes the memoized row for --url.
func (r *Runner) MetadataDelete(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openMetadata(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	url := cmd.String("url")
	if err := repo.Delete(ctx, url); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.painter.OK("✓ Removed "+url))
}

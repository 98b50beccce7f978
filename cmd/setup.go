package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s\n", r.painter.OK("✓ Wrote "+path))
	r.writePlain("Set SPOTIFY_SP_DC (or credentials.spotify.cookie) to enable local capture.\n")
	return nil
}

// SetupDatabase initializes the metadata database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenMetadataStore(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Warn("rolled back latest migration", "path", config.Database.Path)
		r.writePlain("%s\n", r.painter.Warn("✓ Rolled back the latest migration; run setup again to recreate the schema"))
		return nil
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s\n", r.painter.OK("✓ Metadata database ready at "+config.Database.Path))
	return nil
}

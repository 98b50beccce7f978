// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mediagrab/internal/repositories"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the job and download API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// resolveCommand runs one job without the HTTP layer
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "resolve",
		Aliases: []string{"get"},
		Usage:   "Resolve a Spotify or YouTube URL into a download",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Source provider (spotify or youtube)",
				Value: "spotify",
			},
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    "Track, album, playlist or video URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "quality",
				Aliases: []string{"q"},
				Usage:   "Requested quality (320k, 256k or lossless)",
				Value:   "320k",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Print each strategy attempt as it runs",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Follow the job in an interactive progress view",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Output unstyled text",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Also write the job to a CSV file",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Also write a Markdown summary (with artwork) into this directory",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the download when ready",
			},
		},
		Action: r.Resolve,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
		},
	}
}

// setupCommand prepares the metadata database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the metadata database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the latest migration instead",
			},
		},
		Action: r.SetupDatabase,
	}
}

// metadataCommand inspects the oEmbed memo
func metadataCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "metadata",
		Aliases: []string{"meta"},
		Usage:   "Inspect and prune cached track metadata",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached metadata, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to return (0 for all)",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.MetadataList,
			},
			{
				Name:  "prune",
				Usage: "Remove stale cached metadata",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Remove rows fetched before this age",
						Value: repositories.DefaultMetadataMaxAge,
					},
				},
				Action: r.MetadataPrune,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached row",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MetadataClear,
			},
			{
				Name:  "delete",
				Usage: "Remove the cached row for one URL",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Source URL to forget",
						Required: true,
					},
				},
				Action: r.MetadataDelete,
			},
		},
	}
}

// rootFlags are accepted before any subcommand.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

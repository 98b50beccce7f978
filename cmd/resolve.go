package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediagrab/internal/formatter"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/desertthunder/mediagrab/internal/tasks"
	"github.com/desertthunder/mediagrab/internal/ui"
	"github.com/urfave/cli/v3"
)

// Resolve runs a single job in-process and prints the result.
//
// Local assets are left in the downloads directory after the command exits.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := r.newPipeline(config)
	if err != nil {
		return err
	}
	defer p.Close()

	if timeout := config.Server.RequestTimeout.Duration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := models.JobRequest{
		Provider: cmd.String("provider"),
		URL:      cmd.String("url"),
		Quality:  cmd.String("quality"),
	}

	var job *models.Job
	if cmd.Bool("watch") {
		job, err = r.watch(ctx, p.builder, req)
	} else {
		job, err = r.resolve(ctx, p.builder, req, cmd.Bool("progress"))
	}
	if err != nil {
		r.writePlain("%s", ui.Failure(r.painter, err))
		return err
	}

	var localPath string
	if job.HasLocalAsset() {
		if asset, ok := p.assets.Lookup(job.ID); ok {
			localPath = asset.Path
		}
	}

	switch {
	case cmd.Bool("json"):
		if err := r.writeJSON(job, cmd.Bool("pretty")); err != nil {
			return err
		}
	case cmd.Bool("plain"):
		data, err := formatter.JobToText(job)
		if err != nil {
			return err
		}
		r.writePlain("%s", data)
	default:
		r.writePlain("%s", ui.Job(r.painter, job, localPath, time.Now()))
	}

	if path := cmd.String("csv"); path != "" {
		if err := formatter.WriteCSVExport([]*models.Job{job}, path); err != nil {
			return err
		}
		r.logger.Info("csv export written", "path", path)
	}

	if dir := cmd.String("export"); dir != "" {
		result, err := formatter.WriteMarkdownExport(ctx, r.httpClient, job, dir)
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			r.logger.Warn("markdown export", "error", warning)
		}
		r.logger.Info("markdown export written", "dir", result.Directory, "files", len(result.Files))
	}

	if cmd.Bool("open") {
		target := job.DownloadURL
		if localPath != "" {
			target = localPath
		}
		if err := shared.OpenDownload(target); err != nil {
			r.logger.Warn("failed to open download", "target", target, "error", err)
		}
	}

	return nil
}

// resolve builds the job, printing progress updates as they arrive when showProgress is set.
func (r *Runner) resolve(ctx context.Context, jobs *tasks.JobBuilder, req models.JobRequest, showProgress bool) (*models.Job, error) {
	if !showProgress {
		return jobs.Build(ctx, req, nil)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", ui.Progress(r.painter, update))
		}
	}()

	job, err := jobs.Build(ctx, req, progress)
	close(progress)
	<-done
	return job, err
}

// watch builds the job under the interactive progress view.
func (r *Runner) watch(ctx context.Context, jobs *tasks.JobBuilder, req models.JobRequest) (*models.Job, error) {
	model := ui.NewWatchModel(ctx, r.painter, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		return jobs.Build(ctx, req, progress)
	})

	if _, err := tea.NewProgram(model, tea.WithOutput(r.output)).Run(); err != nil {
		return nil, fmt.Errorf("error running progress view: %w", err)
	}
	return model.Result()
}

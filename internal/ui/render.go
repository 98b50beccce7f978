package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/tasks"
	"github.com/dustin/go-humanize"
)

// Styles returns the default colored palette.
func Styles() Painter {
	return styles
}

// Job renders a resolved job. localPath is the committed file on this host, or "" for external links.
func Job(p Painter, job *models.Job, localPath string, now time.Time) string {
	var b strings.Builder

	title := job.Title
	if title == "" {
		title = job.URL
	}
	b.WriteString(p.Title(title))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %s\n", p.OK("✓ "+string(job.Status)), p.Help(fmt.Sprintf("%s · %s · %s", job.Provider, job.Quality, job.ID)))
	fmt.Fprintf(&b, "  Download: %s\n", job.DownloadURL)
	if localPath != "" {
		fmt.Fprintf(&b, "  File:     %s\n", localPath)
	}
	if job.ExpiresAt != nil {
		fmt.Fprintf(&b, "  Expires:  %s\n", p.Warn(humanize.RelTime(*job.ExpiresAt, now, "ago", "from now")))
	}
	if job.Note != "" {
		fmt.Fprintf(&b, "  %s\n", p.Help(job.Note))
	}
	return b.String()
}

// Progress renders a single progress update as one line.
func Progress(p Painter, u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.StrategyFailed:
		return p.Warn(u.Message)
	case tasks.StrategySucceeded, tasks.CommitAsset:
		return p.OK(u.Message)
	default:
		return p.Help(u.Message)
	}
}

// Failure renders err. A [*tasks.ChainError] is expanded to one line per attempted strategy.
func Failure(p Painter, err error) string {
	var chainErr *tasks.ChainError
	if !errors.As(err, &chainErr) {
		return p.Err("✗ "+err.Error()) + "\n"
	}

	var b strings.Builder
	b.WriteString(p.Err(fmt.Sprintf("✗ All %s failed", chainErr.Subject)))
	b.WriteString("\n")
	for i, failure := range chainErr.Failures {
		fmt.Fprintf(&b, "  %d. %s: %v\n", i+1, failure.Strategy, failure.Err)
	}
	if hint := strings.TrimSpace(chainErr.Hint); hint != "" {
		b.WriteString(p.Help(hint))
		b.WriteString("\n")
	}
	return b.String()
}

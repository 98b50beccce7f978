// package formatter renders resolved jobs and memoized metadata as CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/dustin/go-humanize"
)

const maxArtworkBytes = 10 << 20

// JobsToCSV converts jobs to CSV with columns: ID, Provider, URL, Quality, Status, Title, Download URL, Expires At, Queued At
func JobsToCSV(jobs []*models.Job) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Provider", "URL", "Quality", "Status", "Title", "Download URL", "Expires At", "Queued At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, job := range jobs {
		record := []string{
			job.ID,
			string(job.Provider),
			job.URL,
			string(job.Quality),
			string(job.Status),
			job.Title,
			job.DownloadURL,
			formatExpiry(job.ExpiresAt),
			job.QueuedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// JobToMarkdown converts a job to Markdown with an optional artwork image
func JobToMarkdown(job *models.Job, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	title := job.Title
	if title == "" {
		title = job.URL
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Artwork](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Provider**: %s\n", job.Provider)
	fmt.Fprintf(&buf, "**Quality**: %s\n", job.Quality)
	fmt.Fprintf(&buf, "**Status**: %s\n", job.Status)
	fmt.Fprintf(&buf, "**Source**: <%s>\n", job.URL)
	fmt.Fprintf(&buf, "**Download**: <%s>\n", job.DownloadURL)
	if job.ExpiresAt != nil {
		fmt.Fprintf(&buf, "**Expires**: %s\n", formatExpiry(job.ExpiresAt))
	}

	if job.Note != "" {
		fmt.Fprintf(&buf, "\n> %s\n", job.Note)
	}

	return buf.Bytes(), nil
}

// JobToText converts a job to plain text
func JobToText(job *models.Job) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Job: %s\n", job.ID)
	if job.Title != "" {
		fmt.Fprintf(&buf, "Title: %s\n", job.Title)
	}
	fmt.Fprintf(&buf, "Provider: %s (%s)\n", job.Provider, job.Quality)
	fmt.Fprintf(&buf, "Download: %s\n", job.DownloadURL)
	if job.ExpiresAt != nil {
		fmt.Fprintf(&buf, "Expires: %s (%s)\n", formatExpiry(job.ExpiresAt), humanize.Time(*job.ExpiresAt))
	}
	if job.Note != "" {
		fmt.Fprintf(&buf, "Note: %s\n", job.Note)
	}

	return buf.Bytes(), nil
}

// MetadataToCSV converts memoized metadata rows to CSV with columns: Source URL, Title, Author, Thumbnail, Fetched At
func MetadataToCSV(rows []*models.TrackMetadata) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Source URL", "Title", "Author", "Thumbnail", "Fetched At"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{row.SourceURL, row.Title, row.Author, row.Thumbnail, row.FetchedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MetadataToText converts memoized metadata rows to a numbered plain-text list
func MetadataToText(rows []*models.TrackMetadata, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Cached metadata: %d\n\n", len(rows))
	for i, row := range rows {
		title := row.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&buf, "%d. %s\n   %s (fetched %s)\n", i+1, title, row.SourceURL, humanize.RelTime(row.FetchedAt, now, "ago", "from now"))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteCSVExport writes jobs as CSV to path.
func WriteCSVExport(jobs []*models.Job, path string) error {
	data, err := JobsToCSV(jobs)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Artwork   string
	Warnings  []error
}

// WriteMarkdownExport writes a job summary to {dir}/README.md, downloading artwork to {dir}/artwork.jpg when the job has any.
//
// Directory name defaults to the job ID. Artwork failures are reported as warnings and do not fail the export.
func WriteMarkdownExport(ctx context.Context, client *http.Client, job *models.Job, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = job.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir}

	var artworkFilename string
	if job.Artwork != "" {
		imageData, err := DownloadImage(ctx, client, job.Artwork)
		if err != nil {
			result.Warnings = append(result.Warnings, err)
		} else {
			artworkFilename = "artwork.jpg"
			artworkPath := filepath.Join(outputDir, artworkFilename)
			if err := os.WriteFile(artworkPath, imageData, 0644); err != nil {
				result.Warnings = append(result.Warnings, fmt.Errorf("failed to save artwork: %w", err))
				artworkFilename = ""
			} else {
				result.Artwork = artworkPath
				result.Files = append(result.Files, artworkPath)
			}
		}
	}

	mdData, err := JobToMarkdown(job, artworkFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

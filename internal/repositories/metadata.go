package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// MetadataRepository persists [models.TrackMetadata] keyed by source URL.
type MetadataRepository struct {
	db *sql.DB
}

// NewMetadataRepository creates a new MetadataRepository with the given database connection
func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Put inserts or replaces the row for meta.SourceURL.
func (r *MetadataRepository) Put(ctx context.Context, meta models.TrackMetadata) error {
	if meta.SourceURL == "" {
		return fmt.Errorf("%w: source url is required", shared.ErrInvalidInput)
	}

	fetchedAt := meta.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
		INSERT INTO track_metadata (source_url, title, author, thumbnail, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			thumbnail = excluded.thumbnail,
			fetched_at = excluded.fetched_at
	`

	if _, err := r.db.ExecContext(ctx, query, meta.SourceURL, meta.RawTitle, meta.Author, meta.Thumbnail, fetchedAt.UTC()); err != nil {
		return fmt.Errorf("failed to upsert metadata: %w", err)
	}
	return nil
}

// Get retrieves the row for sourceURL. Missing rows wrap [shared.ErrMetadataNotFound].
func (r *MetadataRepository) Get(ctx context.Context, sourceURL string) (*models.TrackMetadata, error) {
	query := `
		SELECT source_url, title, author, thumbnail, fetched_at
		FROM track_metadata
		WHERE source_url = ?
	`

	meta, err := scanMetadata(r.db.QueryRowContext(ctx, query, sourceURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMetadataNotFound, sourceURL)
	}
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// List returns every row, most recently fetched first. A positive limit caps the result.
func (r *MetadataRepository) List(ctx context.Context, limit int) ([]*models.TrackMetadata, error) {
	query := `
		SELECT source_url, title, author, thumbnail, fetched_at
		FROM track_metadata
		ORDER BY fetched_at DESC, source_url ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	var items []*models.TrackMetadata
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Delete removes the row for sourceURL.
func (r *MetadataRepository) Delete(ctx context.Context, sourceURL string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM track_metadata WHERE source_url = ?", sourceURL)
	if err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrMetadataNotFound, sourceURL)
	}
	return nil
}

// Prune deletes rows fetched before cutoff and reports how many were removed.
// A zero cutoff clears the table.
func (r *MetadataRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if cutoff.IsZero() {
		result, err = r.db.ExecContext(ctx, "DELETE FROM track_metadata")
	} else {
		result, err = r.db.ExecContext(ctx, "DELETE FROM track_metadata WHERE fetched_at < ?", cutoff.UTC())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to prune metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanMetadata scans a single row into a [models.TrackMetadata], deriving the display title.
func scanMetadata(row scanner) (*models.TrackMetadata, error) {
	var (
		sourceURL string
		title     string
		author    string
		thumbnail string
		fetchedAt time.Time
	)

	err := row.Scan(&sourceURL, &title, &author, &thumbnail, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan metadata: %w", err)
	}

	return &models.TrackMetadata{
		SourceURL: sourceURL,
		Title:     services.NormalizeTitle(title, author),
		RawTitle:  title,
		Author:    author,
		Thumbnail: thumbnail,
		FetchedAt: fetchedAt,
	}, nil
}

package tasks

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/cache"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/dustin/go-humanize"
)

// Committer owns the downloads directory and is the only path that registers a [models.CachedAsset].
type Committer struct {
	dir    string
	assets *cache.AssetCache
	logger *log.Logger
}

// NewCommitter creates a Committer writing into dir and registering assets in assets.
func NewCommitter(dir string, assets *cache.AssetCache, logger *log.Logger) *Committer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Committer{dir: dir, assets: assets, logger: logger}
}

// Dir returns the downloads directory.
func (c *Committer) Dir() string {
	return c.dir
}

// EnsureDir creates the downloads directory if it is missing.
func (c *Committer) EnsureDir() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create downloads directory: %w", err)
	}
	return nil
}

// TempPath returns the scratch path a strategy streams into before commit.
func (c *Committer) TempPath(id, ext string) string {
	return filepath.Join(c.dir, id+"."+ext)
}

// WriteTemp streams r into path, replacing any previous file. On failure the partial file is removed.
func (c *Committer) WriteTemp(path string, r io.Reader) (int64, error) {
	if err := c.EnsureDir(); err != nil {
		return 0, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: failed to clear %s: %v", shared.ErrTransfer, path, err)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrTransfer, err)
	}

	written, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("%w: %v", shared.ErrTransfer, err)
	}
	return written, nil
}

// Commit moves src to "<dir>/<id>-<sanitized title>.<ext>" and registers it under id.
// Clients only ever see the sanitized title as the file name.
func (c *Committer) Commit(id, src, title, ext string, progress chan<- ProgressUpdate) (models.CachedAsset, error) {
	fileName := shared.SanitizeFileName(title, ext)
	finalPath := filepath.Join(c.dir, id+"-"+fileName)

	if err := c.moveFile(src, finalPath); err != nil {
		os.Remove(src)
		return models.CachedAsset{}, fmt.Errorf("%w: %v", shared.ErrTransfer, err)
	}

	var size int64
	if info, err := os.Stat(finalPath); err == nil {
		size = info.Size()
	}

	asset := c.assets.Remember(id, models.CachedAsset{
		Path:        finalPath,
		FileName:    fileName,
		ContentType: shared.ContentTypeFor(ext),
	})

	c.logger.Info("committed asset", "id", id, "file", fileName, "size", humanize.Bytes(uint64(size)), "expires", asset.ExpiresAt.Format("15:04:05"))
	sendProgress(progress, commitUpdate(fileName, size))
	return asset, nil
}

// moveFile renames src to dst, falling back to copy and remove across filesystems.
func (c *Committer) moveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(src, dst); err != nil {
			os.Remove(dst)
			return fmt.Errorf("failed to copy %s across devices: %w", filepath.Base(src), err)
		}
		if err := os.Remove(src); err != nil {
			c.logger.Warn("failed to remove source after copy", "path", src, "error", err)
		}
		return nil
	}

	return fmt.Errorf("failed to move %s: %w", filepath.Base(src), renameErr)
}

// copyFile streams src to dst with default permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

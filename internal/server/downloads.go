package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/dustin/go-humanize"
)

// DownloadsHandler streams cached assets by id.
//
// Disk presence is checked on every request; an entry whose file is gone or whose TTL has
// passed is evicted and answered with 410.
type DownloadsHandler struct {
	assets AssetStore
	logger *log.Logger
	now    func() time.Time
}

// NewDownloadsHandler creates a DownloadsHandler over assets.
func NewDownloadsHandler(assets AssetStore, logger *log.Logger) *DownloadsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DownloadsHandler{assets: assets, logger: logger, now: time.Now}
}

// Routes implements [Handler].
func (h *DownloadsHandler) Routes() []string {
	return []string{
		models.DownloadRoutePrefix + "{id}",
		models.DownloadRoutePrefix + "{$}",
	}
}

// ServeHTTP implements [http.Handler].
func (h *DownloadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusNotFound, "Download not found")
		return
	}

	f, asset, info, err := h.open(id)
	switch {
	case errors.Is(err, shared.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, "Download expired or invalid")
		return
	case err != nil:
		h.logger.Warn("download evicted", "id", id, "error", err)
		writeError(w, http.StatusGone, "Download expired")
		return
	}
	defer f.Close()

	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.FileName))
	header.Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, f)
	if err != nil {
		h.logger.Error("download stream failed",
			"id", id,
			"sent", humanize.Bytes(uint64(written)),
			"total", humanize.Bytes(uint64(info.Size())),
			"error", err,
		)
		panic(http.ErrAbortHandler)
	}

	h.logger.Debug("download served", "id", id, "size", humanize.Bytes(uint64(written)))
}

// open resolves id to its cached file. Entries that are past their TTL or no longer readable
// on disk are evicted and reported as [shared.ErrAssetExpired].
func (h *DownloadsHandler) open(id string) (*os.File, models.CachedAsset, os.FileInfo, error) {
	asset, ok := h.assets.Lookup(id)
	if !ok {
		return nil, asset, nil, fmt.Errorf("%w: %s", shared.ErrAssetNotFound, id)
	}

	if asset.Expired(h.now()) {
		h.assets.Evict(id)
		return nil, asset, nil, fmt.Errorf("%w: ttl passed at %s", shared.ErrAssetExpired, asset.ExpiresAt.Format(time.RFC3339))
	}

	f, err := os.Open(asset.Path)
	if err != nil {
		h.assets.Evict(id)
		return nil, asset, nil, fmt.Errorf("%w: %v", shared.ErrAssetExpired, err)
	}

	info, err := f.Stat()
	if err == nil && !info.Mode().IsRegular() {
		err = fmt.Errorf("%s is not a regular file", asset.Path)
	}
	if err != nil {
		f.Close()
		h.assets.Evict(id)
		return nil, asset, nil, fmt.Errorf("%w: %v", shared.ErrAssetExpired, err)
	}
	return f, asset, info, nil
}

// package cache tracks committed download assets and reclaims them after a fixed TTL.
package cache

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// DefaultTTL is how long a committed asset stays retrievable.
const DefaultTTL = 6 * time.Hour

type entry struct {
	asset models.CachedAsset
	timer *time.Timer
	gen   uint64
}

// AssetCache is the in-memory authority over which files in the downloads directory are live.
//
// Each id has at most one entry and one pending timer. Both the TTL timer and [AssetCache.Evict]
// converge on the same cleanup, so eviction is idempotent.
type AssetCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
	gen     uint64
	logger  *log.Logger
}

// NewAssetCache creates an empty cache. A non-positive ttl selects [DefaultTTL].
func NewAssetCache(ttl time.Duration, logger *log.Logger) *AssetCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AssetCache{
		ttl:     ttl,
		entries: make(map[string]*entry),
		logger:  shared.WithLogger(logger, "component", "asset-cache"),
	}
}

// TTL returns the retention applied to new entries.
func (c *AssetCache) TTL() time.Duration {
	return c.ttl
}

// Remember registers asset under id, replacing any previous entry and restarting its TTL.
//
// CreatedAt and ExpiresAt are stamped under the lock together with the timer, and the stored value is returned.
func (c *AssetCache) Remember(id string, asset models.CachedAsset) models.CachedAsset {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[id]; ok {
		prev.timer.Stop()
	}

	now := time.Now()
	asset.ID = id
	asset.CreatedAt = now
	asset.ExpiresAt = now.Add(c.ttl)

	c.gen++
	gen := c.gen
	c.entries[id] = &entry{
		asset: asset,
		gen:   gen,
		timer: time.AfterFunc(c.ttl, func() { c.expire(id, gen) }),
	}

	c.logger.Debug("remembered asset", "id", id, "file", asset.FileName, "expires", asset.ExpiresAt.Format(time.RFC3339))
	return asset
}

// Lookup returns the entry for id without touching the filesystem.
func (c *AssetCache) Lookup(id string) (models.CachedAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return models.CachedAsset{}, false
	}
	return e.asset, true
}

// Evict stops the timer for id, drops the entry and removes the backing file.
//
// Unknown ids and already-missing files are not errors.
func (c *AssetCache) Evict(id string) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if ok {
		e.timer.Stop()
		delete(c.entries, id)
	}
	c.mu.Unlock()

	if ok {
		c.removeFile(id, e.asset.Path)
	}
}

// Len returns the number of live entries.
func (c *AssetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops every pending timer without deleting files.
//
// Entries stay readable; only TTL reclamation is halted.
func (c *AssetCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.timer.Stop()
	}
}

// expire runs on the timer goroutine. A stale generation means the entry was
// replaced after this timer was scheduled, so it is left alone.
func (c *AssetCache) expire(id string, gen uint64) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.entries, id)
	c.mu.Unlock()

	c.logger.Info("asset expired", "id", id, "file", e.asset.FileName)
	c.removeFile(id, e.asset.Path)
}

func (c *AssetCache) removeFile(id, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("failed to remove asset file", "id", id, "path", path, "error", err)
	}
}

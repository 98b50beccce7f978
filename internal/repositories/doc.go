// Package repositories implements SQLite persistence for oEmbed metadata.
//
// Metadata is the only state the pipeline keeps across restarts. Download assets live on disk
// under the asset cache and are deliberately not persisted.
//
// Key Implementations:
//   - [MetadataRepository] : upserts, lookups and pruning for the track_metadata table
//   - [CachedMetadataClient] : a [services.MetadataClient] that consults the repository before the network
//
// Rows are keyed by source URL. Only the raw upstream title is stored; the display title is derived on read
// so normalization changes apply to old rows as well.
package repositories

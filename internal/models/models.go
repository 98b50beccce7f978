// package models defines the data model for the media acquisition service
package models

import (
	"strings"
	"time"
)

// Provider identifies the source catalogue of a job.
type Provider string

const (
	ProviderSpotify Provider = "spotify"
	ProviderYouTube Provider = "youtube"
)

// ParseProvider trims and lowercases s, reporting whether it names a supported provider.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderSpotify, ProviderYouTube:
		return p, true
	default:
		return "", false
	}
}

// Quality is the requested audio quality tier.
type Quality string

const (
	Quality320k     Quality = "320k"
	Quality256k     Quality = "256k"
	QualityLossless Quality = "lossless"
)

// NormalizeQuality maps free-form input onto exactly one [Quality].
//
// Exact tier names pass through; anything mentioning "loss" is lossless, anything mentioning "256" is 256k,
// everything else (including "") is 320k.
func NormalizeQuality(s string) Quality {
	v := strings.ToLower(strings.TrimSpace(s))
	switch q := Quality(v); q {
	case Quality320k, Quality256k, QualityLossless:
		return q
	}

	switch {
	case strings.Contains(v, "loss"):
		return QualityLossless
	case strings.Contains(v, "256"):
		return Quality256k
	default:
		return Quality320k
	}
}

// Status is the terminal state of a resolved job.
type Status string

const (
	StatusReady  Status = "ready"
	StatusFailed Status = "failed"
)

// JobRequest is the client-submitted body of a job.
type JobRequest struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Quality  string `json:"quality"`
}

// Job is the public record returned for a resolved request.
//
// Jobs are rebuilt per request and never persisted.
type Job struct {
	ID          string     `json:"id"`
	Provider    Provider   `json:"provider"`
	URL         string     `json:"url"`
	Quality     Quality    `json:"quality"`
	Status      Status     `json:"status"`
	Title       string     `json:"title"`
	Artwork     string     `json:"artwork,omitempty"`
	DownloadURL string     `json:"downloadUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Note        string     `json:"note"`
	QueuedAt    time.Time  `json:"queuedAt"`
}

// DownloadRoutePrefix is the path under which local assets are served.
const DownloadRoutePrefix = "/api/tools/downloads/"

// DownloadPath returns the local asset reference for id.
func DownloadPath(id string) string {
	return DownloadRoutePrefix + id
}

// HasLocalAsset reports whether the job references an asset held on this host.
func (j *Job) HasLocalAsset() bool {
	return strings.HasPrefix(j.DownloadURL, DownloadRoutePrefix)
}

// StrategyResult is what a single acquisition strategy produces on success.
type StrategyResult struct {
	DownloadURL string
	Title       string
	Artwork     string
	ExpiresAt   *time.Time
	Note        string
}

// CachedAsset describes a committed file in the downloads directory.
type CachedAsset struct {
	ID          string
	Path        string
	FileName    string
	ContentType string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the asset's TTL has passed at now.
func (a CachedAsset) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// TrackMetadata is the oEmbed description of a source URL.
type TrackMetadata struct {
	SourceURL string
	Title     string
	RawTitle  string
	Author    string
	Thumbnail string
	FetchedAt time.Time
}

// Empty reports whether no metadata was resolved.
func (m TrackMetadata) Empty() bool {
	return m.RawTitle == "" && m.Author == "" && m.Thumbnail == ""
}

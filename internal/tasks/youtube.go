package tasks

import (
	"net/url"

	"github.com/desertthunder/mediagrab/internal/models"
)

const (
	// DefaultYouTubeProxy is the Piped instance used for direct audio links.
	DefaultYouTubeProxy = "https://piped.video/download"

	youtubeNote = "Uses Piped audio endpoint. Swap with self-hosted ytdlp service when ready."
)

// YoutubeLinkBuilder builds proxy download links for YouTube videos without any network access.
type YoutubeLinkBuilder struct {
	endpoint string
}

// NewYoutubeLinkBuilder creates a builder for endpoint, defaulting to [DefaultYouTubeProxy].
func NewYoutubeLinkBuilder(endpoint string) *YoutubeLinkBuilder {
	if endpoint == "" {
		endpoint = DefaultYouTubeProxy
	}
	return &YoutubeLinkBuilder{endpoint: endpoint}
}

// Build returns the proxy link for sourceURL. 256k asks for "medium", every other tier for "best".
// The result has no expiry and no local asset.
func (b *YoutubeLinkBuilder) Build(sourceURL string, quality models.Quality) *models.StrategyResult {
	tier := "best"
	if quality == models.Quality256k {
		tier = "medium"
	}

	params := url.Values{}
	params.Set("downloadFormat", "audio")
	params.Set("quality", tier)
	params.Set("url", sourceURL)

	return &models.StrategyResult{
		DownloadURL: b.endpoint + "?" + params.Encode(),
		Note:        youtubeNote,
	}
}

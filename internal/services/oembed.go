// oEmbed metadata for Spotify URLs.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
)

const DefaultOEmbedURL = "https://open.spotify.com/oembed"

var spacedHyphen = regexp.MustCompile(`\s+-\s+`)

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedClient implements [MetadataClient] against an oEmbed endpoint.
type OEmbedClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewOEmbedClient creates an [OEmbedClient]. Empty arguments select the Spotify endpoint and [http.DefaultClient].
func NewOEmbedClient(endpoint string, client *http.Client) *OEmbedClient {
	if endpoint == "" {
		endpoint = DefaultOEmbedURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OEmbedClient{endpoint: endpoint, httpClient: client}
}

// Describe implements [MetadataClient].
func (o *OEmbedClient) Describe(ctx context.Context, sourceURL string) (models.TrackMetadata, error) {
	meta := models.TrackMetadata{SourceURL: sourceURL}

	u, err := url.Parse(o.endpoint)
	if err != nil {
		return meta, fmt.Errorf("%w: oembed endpoint: %v", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("url", sourceURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return meta, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var resp oembedResponse
	if err := doJSON(o.httpClient, req, &resp); err != nil {
		return meta, fmt.Errorf("oembed lookup failed: %w", err)
	}

	meta.RawTitle = strings.TrimSpace(resp.Title)
	meta.Author = strings.TrimSpace(resp.AuthorName)
	meta.Thumbnail = resp.ThumbnailURL
	meta.Title = NormalizeTitle(meta.RawTitle, meta.Author)
	meta.FetchedAt = time.Now()
	return meta, nil
}

// NormalizeTitle swaps " - " for an em dash separator and appends the author when the title lacks it.
func NormalizeTitle(title, author string) string {
	title = spacedHyphen.ReplaceAllString(title, " — ")
	if author != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(author)) {
		if title == "" {
			return author
		}
		return title + " — " + author
	}
	return title
}

// SearchQuery builds the extractor query for meta, falling back to sourceURL when nothing is known.
//
// The author is included only when the title does not already mention it.
func SearchQuery(meta models.TrackMetadata, sourceURL string) string {
	var parts []string
	if meta.RawTitle != "" {
		parts = append(parts, meta.RawTitle)
	}
	if meta.Author != "" && !strings.Contains(strings.ToLower(meta.RawTitle), strings.ToLower(meta.Author)) {
		parts = append(parts, meta.Author)
	}
	if len(parts) == 0 {
		return sourceURL
	}
	return strings.Join(append(parts, "audio official"), " ")
}

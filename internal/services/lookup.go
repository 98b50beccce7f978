// Unauthenticated lookup mirrors that translate a Spotify URL into a hosted audio file.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/mediagrab/internal/shared"
)

const (
	DefaultPrimaryLookupURL   = "https://api.spotifydown.com/download"
	DefaultSecondaryLookupURL = "https://spapi.downloader.workers.dev/"
)

var errNoDownloadLink = errors.New("Spotify provider did not return a download link")

// lookupAudio is one entry of the "audio" field, which mirrors return as either an object or an array.
type lookupAudio struct {
	URL string `json:"url"`
}

type lookupMetadata struct {
	Name  string `json:"name"`
	Cover string `json:"cover"`
}

// LookupResponse is the loose JSON shape shared by lookup mirrors.
type LookupResponse struct {
	Audio       json.RawMessage `json:"audio"`
	DownloadURL string          `json:"downloadUrl"`
	Link        string          `json:"link"`
	Metadata    *lookupMetadata `json:"metadata"`
	Title       string          `json:"title"`
	Thumbnail   string          `json:"thumbnail"`
	ExpiresAt   string          `json:"expiresAt"`
	Note        string          `json:"note"`
}

func (r *LookupResponse) audioURL() string {
	if len(r.Audio) == 0 {
		return ""
	}

	var list []lookupAudio
	if err := json.Unmarshal(r.Audio, &list); err == nil {
		for _, a := range list {
			if a.URL != "" {
				return a.URL
			}
		}
		return ""
	}

	var single lookupAudio
	if err := json.Unmarshal(r.Audio, &single); err == nil {
		return single.URL
	}
	return ""
}

// Hydrate converts a mirror response into a [LookupResult], filling defaults.
//
// The download URL is taken from audio, then downloadUrl, then link.
func (r *LookupResponse) Hydrate(defaultNote string) (*LookupResult, error) {
	downloadURL := r.audioURL()
	if downloadURL == "" {
		downloadURL = r.DownloadURL
	}
	if downloadURL == "" {
		downloadURL = r.Link
	}
	if downloadURL == "" {
		return nil, errNoDownloadLink
	}

	result := &LookupResult{
		DownloadURL: downloadURL,
		Title:       "Spotify capture",
		Note:        defaultNote,
	}
	if t, err := time.Parse(time.RFC3339, r.ExpiresAt); err == nil {
		result.ExpiresAt = &t
	}
	if r.Metadata != nil && r.Metadata.Name != "" {
		result.Title = r.Metadata.Name
	} else if r.Title != "" {
		result.Title = r.Title
	}
	if r.Metadata != nil && r.Metadata.Cover != "" {
		result.Artwork = r.Metadata.Cover
	} else {
		result.Artwork = r.Thumbnail
	}
	if r.Note != "" {
		result.Note = r.Note
	}
	return result, nil
}

// PrimaryLookup posts the source URL as JSON to a spotifydown-style endpoint.
type PrimaryLookup struct {
	endpoint   string
	httpClient *http.Client
}

// NewPrimaryLookup creates a [PrimaryLookup]. Empty arguments select the public endpoint and [http.DefaultClient].
func NewPrimaryLookup(endpoint string, client *http.Client) *PrimaryLookup {
	if endpoint == "" {
		endpoint = DefaultPrimaryLookupURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PrimaryLookup{endpoint: endpoint, httpClient: client}
}

func (p *PrimaryLookup) Name() string { return "SpotifyDown" }

// Lookup implements [LookupClient].
func (p *PrimaryLookup) Lookup(ctx context.Context, sourceURL string) (*LookupResult, error) {
	body, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Origin", "https://spotifydown.com")
	req.Header.Set("Referer", "https://spotifydown.com/")
	req.Header.Set("User-Agent", browserUserAgent)

	var resp *LookupResponse
	if err := doJSON(p.httpClient, req, &resp); err != nil || resp == nil {
		return nil, fmt.Errorf("SpotifyDown rejected the request: %w", errOrNull(err))
	}
	return resp.Hydrate("Powered by spotifydown.com API. Replace with self-hosted spotdl when ready.")
}

// SecondaryLookup queries a worker mirror with the source URL in the "link" parameter.
type SecondaryLookup struct {
	endpoint   string
	httpClient *http.Client
}

// NewSecondaryLookup creates a [SecondaryLookup]. Empty arguments select the public endpoint and [http.DefaultClient].
func NewSecondaryLookup(endpoint string, client *http.Client) *SecondaryLookup {
	if endpoint == "" {
		endpoint = DefaultSecondaryLookupURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SecondaryLookup{endpoint: endpoint, httpClient: client}
}

func (s *SecondaryLookup) Name() string { return "Spotify mirror" }

// Lookup implements [LookupClient].
func (s *SecondaryLookup) Lookup(ctx context.Context, sourceURL string) (*LookupResult, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup endpoint: %v", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("link", sourceURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var resp *LookupResponse
	if err := doJSON(s.httpClient, req, &resp); err != nil || resp == nil {
		return nil, fmt.Errorf("Spotify mirror rejected the request: %w", errOrNull(err))
	}
	return resp.Hydrate("Fallback mirror via downloader.workers.dev")
}

func errOrNull(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: empty body", shared.ErrAPIRequest)
}

// Cookie-authenticated Spotify capture client.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/mediagrab/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyTokenURL   = "https://open.spotify.com/get_access_token"
	spotifyBaseURL    = "https://api.spotify.com/v1"
	spotifyCaptureURL = "https://open.spotify.com/stream"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// accessTokenResponse is the web player token payload.
type accessTokenResponse struct {
	ClientID    string `json:"clientId"`
	AccessToken string `json:"accessToken"`
	ExpiresAtMS int64  `json:"accessTokenExpirationTimestampMs"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// CaptureSession is an authenticated Spotify session.
type CaptureSession struct {
	token  *oauth2.Token
	client *http.Client
}

// NewCaptureSession binds token to an HTTP client layered over base.
func NewCaptureSession(token *oauth2.Token, base *http.Client) *CaptureSession {
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return &CaptureSession{
		token:  token,
		client: oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
	}
}

// Token returns the session's access token.
func (s *CaptureSession) Token() *oauth2.Token {
	return s.token
}

// Valid reports whether the session still holds an unexpired token.
func (s *CaptureSession) Valid() bool {
	return s != nil && s.token.Valid()
}

// SpotifyEndpoints overrides the upstream URLs used by [SpotifyCaptureClient].
type SpotifyEndpoints struct {
	Token   string
	API     string
	Capture string
}

// SpotifyCaptureClient implements [MediaClient] with a web player session cookie.
type SpotifyCaptureClient struct {
	endpoints  SpotifyEndpoints
	httpClient *http.Client
}

// NewSpotifyCaptureClient creates a capture client. Empty endpoints select the public Spotify URLs.
func NewSpotifyCaptureClient(endpoints SpotifyEndpoints, client *http.Client) *SpotifyCaptureClient {
	if endpoints.Token == "" {
		endpoints.Token = spotifyTokenURL
	}
	if endpoints.API == "" {
		endpoints.API = spotifyBaseURL
	}
	if endpoints.Capture == "" {
		endpoints.Capture = spotifyCaptureURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SpotifyCaptureClient{endpoints: endpoints, httpClient: client}
}

// FormatCookie turns a bare sp_dc value into a cookie header; values that already carry a name are kept.
func FormatCookie(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.Contains(value, "=") {
		return value
	}
	return "sp_dc=" + value
}

// Authenticate implements [MediaClient].
func (c *SpotifyCaptureClient) Authenticate(ctx context.Context, cookie string) (*CaptureSession, error) {
	cookie = FormatCookie(cookie)
	if cookie == "" {
		return nil, shared.ErrMissingCredentials
	}

	u, err := url.Parse(c.endpoints.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: token endpoint: %v", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("reason", "transport")
	q.Set("productType", "web_player")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	var payload accessTokenResponse
	if err := doJSON(c.httpClient, req, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if payload.AccessToken == "" || payload.IsAnonymous {
		return nil, fmt.Errorf("%w: Spotify returned an anonymous session", shared.ErrInvalidCredentials)
	}

	token := &oauth2.Token{AccessToken: payload.AccessToken, TokenType: "Bearer"}
	if payload.ExpiresAtMS > 0 {
		token.Expiry = time.UnixMilli(payload.ExpiresAtMS)
	}

	return NewCaptureSession(token, c.httpClient), nil
}

// FetchMetadata implements [MediaClient]. Only track URLs carry metadata; other entities return an empty [TrackInfo].
func (c *SpotifyCaptureClient) FetchMetadata(ctx context.Context, session *CaptureSession, sourceURL string) (*TrackInfo, error) {
	kind, id := SpotifyEntity(sourceURL)
	if kind != "track" || id == "" {
		return &TrackInfo{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.API+"/tracks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var track SpotifyTrack
	if err := doJSON(session.client, req, &track); err != nil {
		return nil, fmt.Errorf("spotify API error: %w", err)
	}

	info := &TrackInfo{Title: track.Name}
	if len(track.Artists) > 0 && track.Artists[0].Name != "" {
		info.Title = track.Name + " — " + track.Artists[0].Name
	}
	if len(track.Album.Images) > 0 {
		info.Artwork = track.Album.Images[0].URL
	}
	return info, nil
}

// OpenAudioStream implements [MediaClient].
func (c *SpotifyCaptureClient) OpenAudioStream(ctx context.Context, session *CaptureSession, sourceURL string, format AudioFormat) (io.ReadCloser, error) {
	kind, id := SpotifyEntity(sourceURL)
	if kind != "track" || id == "" {
		return nil, fmt.Errorf("%w: local capture supports track URLs only", shared.ErrStrategyFailed)
	}

	u, err := url.Parse(c.endpoints.Capture)
	if err != nil {
		return nil, fmt.Errorf("%w: capture endpoint: %v", shared.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("uri", "spotify:track:"+id)
	q.Set("format", string(format))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := session.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: capture status %d", shared.ErrInvalidCredentials, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: capture status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return resp.Body, nil
}

// SpotifyEntity splits an open.spotify.com URL into its entity kind and id.
func SpotifyEntity(sourceURL string) (kind, id string) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", ""
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	switch len(segments) {
	case 0:
		return "", ""
	case 1:
		return segments[0], ""
	default:
		return segments[0], segments[1]
	}
}

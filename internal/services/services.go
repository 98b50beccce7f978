package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// browserUserAgent is sent to upstreams that reject non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// AudioFormat is a capture stream encoding.
type AudioFormat string

const (
	FormatOggVorbis320 AudioFormat = "OGG_VORBIS_320"
	FormatOggVorbis160 AudioFormat = "OGG_VORBIS_160"
)

// FormatForQuality maps a requested quality to a capture encoding.
//
// 320k and lossless share the highest available tier.
func FormatForQuality(q models.Quality) AudioFormat {
	if q == models.Quality256k {
		return FormatOggVorbis160
	}
	return FormatOggVorbis320
}

// TrackInfo is the display metadata for a captured track.
type TrackInfo struct {
	Title   string
	Artwork string
}

// MediaClient is a cookie-authenticated streaming client.
type MediaClient interface {
	// Authenticate exchanges a session cookie for a [CaptureSession].
	Authenticate(ctx context.Context, cookie string) (*CaptureSession, error)

	// FetchMetadata resolves display metadata for a source URL.
	FetchMetadata(ctx context.Context, session *CaptureSession, sourceURL string) (*TrackInfo, error)

	// OpenAudioStream opens the encoded audio for a source URL. Callers must close the stream.
	OpenAudioStream(ctx context.Context, session *CaptureSession, sourceURL string, format AudioFormat) (io.ReadCloser, error)
}

// LookupResult is a hydrated response from an unauthenticated lookup API.
type LookupResult struct {
	DownloadURL string
	Title       string
	Artwork     string
	ExpiresAt   *time.Time
	Note        string
}

// LookupClient resolves a source URL to a third-party hosted audio URL.
type LookupClient interface {
	Lookup(ctx context.Context, sourceURL string) (*LookupResult, error)
	Name() string
}

// MetadataClient describes a source URL via an oEmbed-style API.
type MetadataClient interface {
	Describe(ctx context.Context, sourceURL string) (models.TrackMetadata, error)
}

// Extractor searches for a query and writes the best audio match to disk.
type Extractor interface {
	// SearchBestAudio downloads the top result for query into dir as "<stem>.<ext>" and returns that path.
	SearchBestAudio(ctx context.Context, query, dir, stem string) (string, error)
}

// doJSON sends req with client and decodes a 2xx JSON body into result.
func doJSON(client *http.Client, req *http.Request, result any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

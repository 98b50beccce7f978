package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mediagrab/internal/cache"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
	"golang.org/x/oauth2"
)

var quietLogger = shared.NewLogger(io.Discard)

// newTestCommitter returns a committer over a temp dir and a cache that is closed with the test.
func newTestCommitter(t *testing.T) (*Committer, *cache.AssetCache) {
	t.Helper()
	assets := cache.NewAssetCache(time.Hour, quietLogger)
	t.Cleanup(assets.Close)
	return NewCommitter(filepath.Join(t.TempDir(), "downloads"), assets, quietLogger), assets
}

type fakeStrategy struct {
	name   string
	result *models.StrategyResult
	err    error
	calls  int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, req Request) (*models.StrategyResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeMediaClient struct {
	mu         sync.Mutex
	authCalls  int
	authErr    error
	streamErr  error
	streamBody string
	info       *services.TrackInfo
	infoErr    error
	formats    []services.AudioFormat
}

func (f *fakeMediaClient) Authenticate(ctx context.Context, cookie string) (*services.CaptureSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	token := &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
	return services.NewCaptureSession(token, nil), nil
}

func (f *fakeMediaClient) FetchMetadata(ctx context.Context, session *services.CaptureSession, sourceURL string) (*services.TrackInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeMediaClient) OpenAudioStream(ctx context.Context, session *services.CaptureSession, sourceURL string, format services.AudioFormat) (io.ReadCloser, error) {
	f.mu.Lock()
	f.formats = append(f.formats, format)
	f.mu.Unlock()
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return io.NopCloser(strings.NewReader(f.streamBody)), nil
}

func (f *fakeMediaClient) authCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls
}

type fakeLookup struct {
	name   string
	result *services.LookupResult
	err    error
	calls  int
}

func (f *fakeLookup) Name() string { return f.name }

func (f *fakeLookup) Lookup(ctx context.Context, sourceURL string) (*services.LookupResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeMetadata struct {
	meta  models.TrackMetadata
	err   error
	calls int
}

func (f *fakeMetadata) Describe(ctx context.Context, sourceURL string) (models.TrackMetadata, error) {
	f.calls++
	meta := f.meta
	meta.SourceURL = sourceURL
	return meta, f.err
}

// fakeExtractor writes "<dir>/<stem>.<ext>" with the query as content.
type fakeExtractor struct {
	ext     string
	err     error
	queries []string
}

func (f *fakeExtractor) SearchBestAudio(ctx context.Context, query, dir, stem string) (string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	ext := f.ext
	if ext == "" {
		ext = "m4a"
	}
	path := filepath.Join(dir, stem+"."+ext)
	if err := os.WriteFile(path, []byte(query), 0644); err != nil {
		return "", err
	}
	return path, nil
}

var errUpstream = errors.New("upstream unavailable")

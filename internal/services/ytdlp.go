// yt-dlp wrapper used by the search fallback.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/mediagrab/internal/shared"
	"github.com/lrstanley/go-ytdlp"
)

// ExtractorExtensions lists the audio containers yt-dlp may produce, in lookup order.
var ExtractorExtensions = []string{"m4a", "mp3", "opus", "webm", "flac", "wav"}

const (
	extractorFormat  = "bestaudio[ext=m4a]/bestaudio/best"
	maxStderrCapture = 8 << 10
)

// YTDLPExtractor implements [Extractor] by shelling out to yt-dlp.
type YTDLPExtractor struct {
	binary  string
	timeout time.Duration
}

// NewYTDLPExtractor creates an extractor for binary. A zero timeout leaves the caller's deadline in charge.
func NewYTDLPExtractor(binary string, timeout time.Duration) *YTDLPExtractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPExtractor{binary: binary, timeout: timeout}
}

// Available reports whether the binary resolves on PATH (or as a path).
func (y *YTDLPExtractor) Available() error {
	if _, err := exec.LookPath(y.binary); err != nil {
		return fmt.Errorf("%w: binary %q not found", shared.ErrExtractorUnavailable, y.binary)
	}
	return nil
}

// Command builds the yt-dlp invocation that searches for query and writes into dir/stem.
func (y *YTDLPExtractor) Command(ctx context.Context, query, dir, stem string) *exec.Cmd {
	return ytdlp.New().
		SetExecutable(y.binary).
		NoPlaylist().
		Quiet().
		RestrictFilenames().
		PreferFreeFormats().
		Format(extractorFormat).
		Output(filepath.Join(dir, stem+".%(ext)s")).
		BuildCommand(ctx, "ytsearch1:"+query)
}

// SearchBestAudio implements [Extractor].
func (y *YTDLPExtractor) SearchBestAudio(ctx context.Context, query, dir, stem string) (string, error) {
	if err := y.Available(); err != nil {
		return "", err
	}

	CleanupArtifacts(dir, stem)

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := y.Command(ctx, query, dir, stem)
	cmd.Stderr = &limitedBuffer{buf: &stderr, max: maxStderrCapture}
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		CleanupArtifacts(dir, stem)
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: yt-dlp: %v", shared.ErrTimeout, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("yt-dlp failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	path, err := ResolveOutput(dir, stem)
	if err != nil {
		CleanupArtifacts(dir, stem)
		return "", err
	}
	return path, nil
}

// CleanupArtifacts removes finished, partial and sidecar files a previous run may have left for stem.
func CleanupArtifacts(dir, stem string) {
	targets := []string{filepath.Join(dir, stem+".info.json")}
	for _, ext := range ExtractorExtensions {
		targets = append(targets,
			filepath.Join(dir, stem+"."+ext),
			filepath.Join(dir, stem+"."+ext+".part"),
		)
	}
	for _, target := range targets {
		os.Remove(target)
	}
}

// ResolveOutput finds the file yt-dlp produced for stem by checking [ExtractorExtensions] in order.
func ResolveOutput(dir, stem string) (string, error) {
	for _, ext := range ExtractorExtensions {
		candidate := filepath.Join(dir, stem+"."+ext)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to inspect yt-dlp output: %w", err)
		}
	}
	return "", errors.New("yt-dlp fallback did not produce an audio file")
}

// limitedBuffer keeps the first max bytes written and discards the rest.
type limitedBuffer struct {
	buf *bytes.Buffer
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

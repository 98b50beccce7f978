// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultFileStem replaces titles that sanitize to nothing.
	DefaultFileStem = "spotify-track"
	maxFileStem     = 80
)

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)
	repeatedDashes  = regexp.MustCompile(`-+`)
)

var contentTypes = map[string]string{
	"ogg":  "audio/ogg",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"webm": "audio/webm",
	"opus": "audio/ogg",
	"flac": "audio/flac",
	"wav":  "audio/wav",
}

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// SanitizeFileName turns a free-form title into a path-safe file name with the given extension.
//
// Only ASCII letters, digits, '-' and '_' survive; the stem is capped at 80 characters
// and falls back to [DefaultFileStem] when nothing is left.
func SanitizeFileName(title, ext string) string {
	stem := unsafeFileChars.ReplaceAllString(title, "-")
	stem = repeatedDashes.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-")
	if len(stem) > maxFileStem {
		stem = stem[:maxFileStem]
	}
	if stem == "" {
		stem = DefaultFileStem
	}
	return stem + "." + ext
}

// ContentTypeFor maps an audio file extension to its MIME type.
func ContentTypeFor(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// package server contains middleware & handlers for the media acquisition service
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/tasks"
)

const (
	// JobsRoute accepts job submissions.
	JobsRoute = "/api/tools/download"

	// DefaultRequestTimeout bounds a job when no timeout is configured.
	DefaultRequestTimeout = 5 * time.Minute
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, recovery, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// JobResolver turns a submitted request into a job.
type JobResolver interface {
	Build(ctx context.Context, req models.JobRequest, progress chan<- tasks.ProgressUpdate) (*models.Job, error)
}

// AssetStore is the read and evict surface of the asset cache.
type AssetStore interface {
	Lookup(id string) (models.CachedAsset, bool)
	Evict(id string)
}

// Opts configures [NewRouter].
type Opts struct {
	Jobs              JobResolver
	Assets            AssetStore
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *log.Logger
}

// NewRouter wires the job and download routes behind the standard middleware stack:
// recovery, request logging, CORS and submission rate limiting.
func NewRouter(opts Opts) *BasicRouter {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	r := NewBasicRouter()
	r.Use(
		Recover(opts.Logger),
		RequestLogger(opts.Logger),
		CORS(),
		RateLimit(opts.RequestsPerSecond, opts.Burst),
	)

	r.Handle(http.MethodPost, JobsRoute, NewJobsHandler(opts.Jobs, opts.RequestTimeout, opts.Logger))
	r.Handler(NewDownloadsHandler(opts.Assets, opts.Logger))
	r.NotFound()
	return r
}

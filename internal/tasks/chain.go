package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/services"
	"github.com/desertthunder/mediagrab/internal/shared"
)

// CredentialHint is appended to a [ChainError] when no capture cookie is configured.
const CredentialHint = " Configure SPOTIFY_SP_DC or SPOTIFY_COOKIE env vars for reliable local capture."

// Request is the per-job input handed to every [Strategy].
type Request struct {
	ID       string
	URL      string
	Quality  models.Quality
	Progress chan<- ProgressUpdate
}

// Strategy attempts one acquisition method.
//
// A nil error with a nil result or an empty download URL counts as a failure.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (*models.StrategyResult, error)
}

// StrategyFailure records why one strategy did not produce a result.
type StrategyFailure struct {
	Strategy string
	Err      error
}

// ChainError is returned when every strategy in a [Chain] failed.
//
// Its message lists each failure reason in attempt order. It matches [shared.ErrChainExhausted]
// and every underlying failure via [errors.Is].
type ChainError struct {
	Subject  string
	Failures []StrategyFailure
	Hint     string
}

func (e *ChainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "All %s failed.", e.Subject)

	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil && f.Err.Error() != "" {
			reasons = append(reasons, f.Err.Error())
		}
	}
	if len(reasons) > 0 {
		b.WriteString(" Details: ")
		b.WriteString(strings.Join(reasons, " | "))
	}
	b.WriteString(e.Hint)
	return b.String()
}

func (e *ChainError) Unwrap() []error {
	errs := []error{shared.ErrChainExhausted}
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Chain runs an ordered list of strategies and stops at the first success.
type Chain struct {
	subject    string
	hint       string
	strategies []Strategy
	logger     *log.Logger
}

// NewChain creates a chain that reports exhaustion as "All <subject> failed."
func NewChain(subject string, logger *log.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Chain{subject: subject, strategies: strategies, logger: logger}
}

// WithHint sets a suffix appended to the exhaustion message.
func (c *Chain) WithHint(hint string) *Chain {
	c.hint = hint
	return c
}

// Names lists the strategies in attempt order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Run attempts each strategy in order. It returns the first usable result, or a [*ChainError]
// holding every failure when none succeeds.
func (c *Chain) Run(ctx context.Context, req Request) (*models.StrategyResult, error) {
	total := len(c.strategies)
	failures := make([]StrategyFailure, 0, total)

	for i, strategy := range c.strategies {
		step := i + 1
		name := strategy.Name()

		if err := ctx.Err(); err != nil {
			failures = append(failures, StrategyFailure{Strategy: name, Err: fmt.Errorf("%w: %s skipped: %v", shared.ErrTimeout, name, err)})
			break
		}

		sendProgress(req.Progress, attemptUpdate(step, total, name))
		c.logger.Debug("attempting strategy", "job", req.ID, "strategy", name, "step", step, "total", total)

		result, err := strategy.Attempt(ctx, req)
		if err == nil && (result == nil || result.DownloadURL == "") {
			err = fmt.Errorf("%w: %s returned no download link", shared.ErrStrategyFailed, name)
		}
		if err != nil {
			c.logger.Warn("strategy failed", "job", req.ID, "strategy", name, "error", err)
			sendProgress(req.Progress, failedUpdate(step, total, name, err))
			failures = append(failures, StrategyFailure{Strategy: name, Err: err})
			continue
		}

		c.logger.Info("strategy succeeded", "job", req.ID, "strategy", name, "title", result.Title)
		sendProgress(req.Progress, succeededUpdate(step, total, name, result.Title))
		return result, nil
	}

	return nil, &ChainError{Subject: c.subject, Failures: failures, Hint: c.hint}
}

// SpotifyChainOpts holds the collaborators for [NewSpotifyChain].
type SpotifyChainOpts struct {
	Capture   services.MediaClient
	Cookie    string
	Lookups   []services.LookupClient
	Metadata  services.MetadataClient
	Extractor services.Extractor
	Committer *Committer
	Logger    *log.Logger
}

// NewSpotifyChain assembles the Spotify cascade: local capture (only with a cookie), each lookup
// mirror in order, then the YouTube search fallback. Without a cookie the exhaustion message carries
// [CredentialHint].
func NewSpotifyChain(opts SpotifyChainOpts) *Chain {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var strategies []Strategy
	if opts.Cookie != "" && opts.Capture != nil {
		strategies = append(strategies, NewCaptureStrategy(opts.Capture, opts.Cookie, opts.Committer, logger))
	}
	for _, lookup := range opts.Lookups {
		strategies = append(strategies, NewLookupStrategy(lookup))
	}
	if opts.Metadata != nil && opts.Extractor != nil {
		strategies = append(strategies, NewSearchStrategy(opts.Metadata, opts.Extractor, opts.Committer, logger))
	}

	chain := NewChain("Spotify providers", logger, strategies...)
	if opts.Cookie == "" {
		chain.WithHint(CredentialHint)
	}
	return chain
}

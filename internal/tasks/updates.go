package tasks

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ProgressUpdate represents a progress event while a job resolves.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current strategy number (1-based)
	Total   int    // Strategies in the chain
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ValidateRequest Phase = iota
	AttemptStrategy
	StrategyFailed
	StrategySucceeded
	CommitAsset
	BuildLink
)

func (p Phase) String() string {
	switch p {
	case ValidateRequest:
		return "validate"
	case AttemptStrategy:
		return "attempt_strategy"
	case StrategyFailed:
		return "strategy_failed"
	case StrategySucceeded:
		return "strategy_succeeded"
	case CommitAsset:
		return "commit_asset"
	case BuildLink:
		return "build_link"
	default:
		return ""
	}
}

// sendProgress delivers update without blocking; a nil or full channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validateUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateRequest,
		Message: fmt.Sprintf("Validating %s request...", provider),
	}
}

func attemptUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AttemptStrategy,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Trying %s...", step, total, name),
	}
}

func failedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StrategyFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
		Data:    err,
	}
}

func succeededUpdate(step, total int, name, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StrategySucceeded,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s resolved %q", step, total, name, title),
	}
}

func commitUpdate(fileName string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitAsset,
		Message: fmt.Sprintf("Saved %s (%s)", fileName, humanize.Bytes(uint64(size))),
	}
}

func buildLinkUpdate(quality string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildLink,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Building %s audio link...", quality),
	}
}

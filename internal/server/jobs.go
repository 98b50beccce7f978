package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/shared"
)

const maxJobBody = 1 << 20

// JobsHandler accepts job submissions and answers with the resolved job.
//
// Resolution runs on a context detached from the client connection and bounded by the handler's timeout.
type JobsHandler struct {
	jobs    JobResolver
	timeout time.Duration
	logger  *log.Logger
}

// NewJobsHandler creates a JobsHandler.
func NewJobsHandler(jobs JobResolver, timeout time.Duration, logger *log.Logger) *JobsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &JobsHandler{jobs: jobs, timeout: timeout, logger: logger}
}

type jobResponse struct {
	Job *models.Job `json:"job"`
}

// ServeHTTP handles POST job submissions.
func (h *JobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJobRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	job, err := h.jobs.Build(ctx, req, nil)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, jobResponse{Job: job})
	case errors.Is(err, shared.ErrChainExhausted):
		h.logger.Error("failed to enqueue media job", "provider", req.Provider, "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("unexpected job failure", "provider", req.Provider, "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJobRequest reads the body as a [models.JobRequest]. An empty body decodes to the zero value.
func decodeJobRequest(w http.ResponseWriter, r *http.Request) (models.JobRequest, error) {
	var req models.JobRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJobBody))
	if err != nil {
		return req, err
	}
	if len(body) == 0 {
		return req, nil
	}
	err = json.Unmarshal(body, &req)
	return req, err
}

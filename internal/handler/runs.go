package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/segyhp/loan-e2e/internal/suite"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
	"github.com/segyhp/loan-e2e/pkg/response"
)

// RunTrigger is the part of the run service the HTTP surface needs
type RunTrigger interface {
	TriggerAsync(ctx context.Context) error
	Running() bool
	Last() (*suite.Result, bool)
	History() []*suite.Result
}

type RunHandler struct {
	runs RunTrigger
	// runCtx outlives the request that triggered the run
	runCtx context.Context
}

func NewRunHandler(ctx context.Context, runs RunTrigger) *RunHandler {
	return &RunHandler{runs: runs, runCtx: ctx}
}

type runStatus struct {
	Running bool          `json:"running"`
	Last    *suite.Result `json:"last,omitempty"`
}

// Status reports whether a run is going and the last result
func (h *RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	last, _ := h.runs.Last()
	response.Success(w, runStatus{Running: h.runs.Running(), Last: last})
}

// Last returns the latest finished run
func (h *RunHandler) Last(w http.ResponseWriter, r *http.Request) {
	last, ok := h.runs.Last()
	if !ok {
		response.NotFound(w, "no finished runs yet")
		return
	}
	response.Success(w, last)
}

// History lists recent runs
func (h *RunHandler) History(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.runs.History())
}

// Trigger starts a run unless one is already going
func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	err := h.runs.TriggerAsync(h.runCtx)
	switch {
	case errors.Is(err, apperrors.ErrRunInProgress):
		response.Error(w, http.StatusConflict, "Run already in progress", err)
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "Failed to start run", err)
	default:
		response.Accepted(w, "run started")
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/spend-insights/internal/api/middleware"
	"github.com/dvloznov/spend-insights/internal/jobs"
	"github.com/dvloznov/spend-insights/internal/logger"
)

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore) *JobsHandler {
	return &JobsHandler{store: store}
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := jobs.JobFilter{Status: jobs.JobStatus(query.Get("status"))}
	switch filter.Status {
	case "", jobs.JobStatusPending, jobs.JobStatusRunning, jobs.JobStatusCompleted, jobs.JobStatusFailed:
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

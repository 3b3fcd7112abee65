package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dvloznov/spend-insights/internal/api/middleware"
	"github.com/dvloznov/spend-insights/internal/jobs"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/pipeline"
	"github.com/dvloznov/spend-insights/internal/spreadsheet"
	"github.com/dvloznov/spend-insights/internal/storage"
)

// HealthMessage is returned by the health endpoint.
const HealthMessage = "AI Supplier Analysis API is running"

// Analyzer runs the pipeline on a saved workbook.
type Analyzer interface {
	Analyze(ctx context.Context, sourcePath string) (*pipeline.Result, error)
}

// AnalysisHandler serves uploads, report downloads and the health check.
type AnalysisHandler struct {
	analyzer       Analyzer
	uploads        *storage.LocalStore
	reports        storage.ReportStore
	publisher      jobs.Publisher
	maxUploadBytes int64
}

// NewAnalysisHandler creates a handler. publisher may be nil, which
// disables asynchronous analysis.
func NewAnalysisHandler(analyzer Analyzer, uploads *storage.LocalStore, reports storage.ReportStore, publisher jobs.Publisher, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:       analyzer,
		uploads:        uploads,
		reports:        reports,
		publisher:      publisher,
		maxUploadBytes: maxUploadBytes,
	}
}

// Analyze handles POST /api/analyze. With ?async=true the analysis is
// queued and the response is 202 with the job id.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if async && h.publisher == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Asynchronous analysis is not enabled")
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			middleware.WriteError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds the %d byte upload limit", tooLarge.Limit))
		case errors.Is(err, http.ErrMissingFile):
			middleware.WriteError(w, http.StatusBadRequest, "No file provided")
		default:
			middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart upload")
		}
		return
	}
	defer file.Close()

	if header.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if err := spreadsheet.CheckExtension(header.Filename); err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, pipeline.FailureResult(err))
		return
	}

	name := uploadName(header.Filename)
	path, err := h.uploads.SaveReader(ctx, name, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to save upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	log.Info().Str("filename", header.Filename).Str("path", path).Int64("size", header.Size).Msg("Upload saved")

	if async {
		h.enqueue(w, r, path, header.Filename)
		return
	}

	result, err := h.analyzer.Analyze(ctx, path)
	if err != nil {
		middleware.WriteJSON(w, StatusFor(err), pipeline.FailureResult(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

func (h *AnalysisHandler) enqueue(w http.ResponseWriter, r *http.Request, path, filename string) {
	job := &jobs.AnalysisJob{
		JobID:      uuid.NewString(),
		SourcePath: path,
		Filename:   filename,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to enqueue analysis")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue analysis")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"jobId":     job.JobID,
		"status":    string(jobs.JobStatusPending),
		"statusUrl": "/api/jobs/" + job.JobID,
	})
}

// Download handles GET /api/download/{filename}.
func (h *AnalysisHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	data, err := h.reports.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			middleware.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("filename", filename).Msg("Failed to open report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to open report")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Health handles GET /api/health.
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": HealthMessage,
	})
}

// StatusFor maps a pipeline error onto an HTTP status.
func StatusFor(err error) int {
	switch pipeline.Classify(err) {
	case pipeline.KindSchema:
		return http.StatusUnprocessableEntity
	case pipeline.KindUnsupportedFile:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// uploadName prefixes the sanitized client filename so concurrent uploads
// with the same name do not overwrite each other.
func uploadName(filename string) string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + storage.SafeName(filename)
}

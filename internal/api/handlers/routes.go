package handlers

import "net/http"

// Routes registers every endpoint on a new mux. jobsHandler may be nil.
func Routes(analysis *AnalysisHandler, jobsHandler *JobsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", analysis.Analyze)
	mux.HandleFunc("GET /api/download/{filename}", analysis.Download)
	mux.HandleFunc("GET /api/health", analysis.Health)

	if jobsHandler != nil {
		mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
		mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)
	}

	return mux
}

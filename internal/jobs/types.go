package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/spend-insights/internal/pipeline"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned by stores for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// ErrJobAbandoned is the failure recorded for jobs still waiting when the
// queue stops.
var ErrJobAbandoned = errors.New("queue stopped before the job ran")

// AnalysisJob is one queued analysis of an uploaded workbook.
type AnalysisJob struct {
	JobID string `json:"jobId"`

	// SourcePath is the saved upload the pipeline reads.
	SourcePath string `json:"-"`

	// Filename is the name the client uploaded.
	Filename string `json:"filename"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Result is set once the job has finished, successfully or not.
	Result *pipeline.Result `json:"result,omitempty"`
}

// Done reports whether the job has finished.
func (j *AnalysisJob) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Publisher enqueues analysis jobs.
type Publisher interface {
	Publish(ctx context.Context, job *AnalysisJob) error
	Close() error
}

// Consumer runs queued jobs.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler runs one job and returns its result. A returned error marks
// the job failed.
type JobHandler func(ctx context.Context, job *AnalysisJob) (*pipeline.Result, error)

// JobStore keeps job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *AnalysisJob) error
	GetJob(ctx context.Context, jobID string) (*AnalysisJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalysisJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}

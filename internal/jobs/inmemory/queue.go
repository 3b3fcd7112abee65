package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/spend-insights/internal/jobs"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/pipeline"
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses a buffered channel for job distribution and is safe for
// concurrent use. Jobs are not retried: a failed analysis fails the same
// way on a second run.
type Queue struct {
	jobChan   chan *jobs.AnalysisJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	workers   int
	closed    bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can wait before Publish blocks.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		jobChan:   make(chan *jobs.AnalysisJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
	}
}

// Publish records job as pending and enqueues it.
func (q *Queue) Publish(ctx context.Context, job *jobs.AnalysisJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	job.Status = jobs.JobStatusPending
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if err := q.store.SaveJob(ctx, job); err != nil {
		return err
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

// Start launches the workers. Each job runs handler with ctx.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return jobs.ErrQueueClosed
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

func (q *Queue) processJob(ctx context.Context, job *jobs.AnalysisJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Logger()
	ctx = logger.WithContext(ctx, log)

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	_ = q.store.SaveJob(ctx, job)

	result, err := q.run(ctx, job, handler)

	completedAt := time.Now()
	job.CompletedAt = &completedAt
	if err != nil {
		job.Status = jobs.JobStatusFailed
		job.Result = pipeline.FailureResult(err)
		log.Error().Err(err).Msg("analysis job failed")
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Result = result
		log.Info().Dur("took", completedAt.Sub(now)).Msg("analysis job completed")
	}

	_ = q.store.SaveJob(ctx, job)
}

// run calls handler, turning a panic into a failed job.
func (q *Queue) run(ctx context.Context, job *jobs.AnalysisJob, handler jobs.JobHandler) (res *pipeline.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return handler(ctx, job)
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprintf("analysis panicked: %v", e.value) }

// Stop closes the queue and waits for in-flight jobs to complete. Jobs that
// never reached a worker are marked failed with jobs.ErrJobAbandoned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.abandonPending(ctx)
		return nil
	case <-ctx.Done():
		q.abandonPending(ctx)
		return ctx.Err()
	}
}

func (q *Queue) abandonPending(ctx context.Context) {
	log := logger.FromContext(ctx)
	for {
		select {
		case job := <-q.jobChan:
			if job == nil {
				continue
			}
			now := time.Now()
			job.Status = jobs.JobStatusFailed
			job.CompletedAt = &now
			job.Result = pipeline.FailureResult(jobs.ErrJobAbandoned)
			_ = q.store.SaveJob(ctx, job)
			log.Warn().Str("job_id", job.JobID).Msg("analysis job abandoned on shutdown")
		default:
			return
		}
	}
}

// Close stops the queue without a deadline.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)

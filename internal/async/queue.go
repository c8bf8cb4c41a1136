// Package async runs extraction jobs on a bounded pool of workers.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one extraction request. When Text is set the page is not rendered.
type Job struct {
	URL         string
	Text        *string
	SourcePath  string // snapshot file the text came from, if any
	SubmittedAt time.Time
	TraceID     string
}

// Runner is the part of pipeline.Processor the queue drives.
type Runner interface {
	Run(ctx context.Context, url string) (pipeline.Result, error)
	ExtractText(ctx context.Context, url, text string) (pipeline.Result, error)
}

type Queue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration
	done    func(Job, pipeline.Result, error)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback invoked by the worker after every job.
func WithOnDone(fn func(Job, pipeline.Result, error)) Option {
	return func(q *Queue) { q.done = fn }
}

func NewQueue(runner Runner, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		runner:  runner,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 16),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.process(workerID, job)
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithTraceID(ctx, job.TraceID)

	var (
		res pipeline.Result
		err error
	)
	if job.Text != nil {
		res, err = q.runner.ExtractText(ctx, job.URL, *job.Text)
	} else {
		res, err = q.runner.Run(ctx, job.URL)
	}

	if err != nil {
		q.logger.Error("job failed",
			"worker_id", workerID, "trace_id", job.TraceID,
			"url", job.URL, "source", job.SourcePath, "error", err,
		)
	} else {
		q.logger.Info("job done",
			"worker_id", workerID, "trace_id", job.TraceID,
			"run_id", res.RunID, "records", res.Collection.LenderCount,
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
	}
	if q.done != nil {
		q.done(job, res, err)
	}
}

// Enqueue submits a job. When the buffer is full it blocks until a worker
// frees a slot or ctx is done.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "url", job.URL)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued job", "url", job.URL, "trace_id", job.TraceID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "url", job.URL)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

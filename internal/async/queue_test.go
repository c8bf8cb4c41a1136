package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
	"github.com/joseph-ayodele/loan-offers/internal/pipeline"
)

type recordingRunner struct {
	mu       sync.Mutex
	rendered []string
	texts    []string
	traces   []string
	block    chan struct{}
}

func (r *recordingRunner) Run(ctx context.Context, url string) (pipeline.Result, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, url)
	r.traces = append(r.traces, common.TraceIDFromContext(ctx))
	if url == "bad" {
		return pipeline.Result{}, errors.New("render failed")
	}
	return pipeline.Result{Collection: offers.NewCollection(url, time.Now(), nil)}, nil
}

func (r *recordingRunner) ExtractText(_ context.Context, url, text string) (pipeline.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, url+"|"+text)
	return pipeline.Result{}, nil
}

func TestQueue_ProcessesAndDrains(t *testing.T) {
	runner := &recordingRunner{}
	var (
		mu     sync.Mutex
		failed int
	)
	q := NewQueue(runner, nil,
		WithWorkers(3),
		WithQueueSize(1),
		WithProcessTimeout(time.Second),
		WithOnDone(func(_ Job, _ pipeline.Result, err error) {
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}),
	)

	ctx := context.Background()
	text := "HDFC Bank Personal Loan 10.5%"
	require.NoError(t, q.Enqueue(ctx, Job{URL: "https://a.test", TraceID: "t-1"}))
	require.NoError(t, q.Enqueue(ctx, Job{URL: "bad"}))
	require.NoError(t, q.Enqueue(ctx, Job{URL: "file://snap.txt", Text: &text, SourcePath: "/tmp/snap.txt"}))

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.ElementsMatch(t, []string{"https://a.test", "bad"}, runner.rendered)
	assert.Equal(t, []string{"file://snap.txt|" + text}, runner.texts)
	assert.Contains(t, runner.traces, "t-1")
	for _, tr := range runner.traces {
		assert.NotEmpty(t, tr)
	}
	assert.Equal(t, 1, failed)

	assert.ErrorIs(t, q.Enqueue(ctx, Job{URL: "late"}), ErrQueueClosed)
	q.Shutdown(shutdownCtx)
}

func TestQueue_BackpressureHonoursContext(t *testing.T) {
	runner := &recordingRunner{block: make(chan struct{})}
	q := NewQueue(runner, nil, WithWorkers(1), WithQueueSize(1))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{URL: "first"}))
	// Wait until the worker has taken the first job and is blocked on it.
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, Job{URL: "second"}))

	full, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(full, Job{URL: "third"}), context.DeadlineExceeded)

	close(runner.block)
	q.Shutdown(ctx)
	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, runner.rendered)
}

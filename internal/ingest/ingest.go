// Package ingest feeds saved page snapshots and applicant lists into the
// system: snapshot files go through the extraction queue, applicant CSVs
// into the applicants table.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/loan-offers/internal/async"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath string
	TraceID    string
	TextBytes  int
	Err        string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Enqueuer accepts extraction jobs; *async.Queue satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/async"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/render"
)

// maxSnapshotBytes caps how much of a snapshot file is read.
const maxSnapshotBytes = 32 << 20

// ReadSnapshot loads a snapshot file as page text. HTML is flattened to its
// visible text; anything else is read as is.
func ReadSnapshot(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", common.NewAppError("INVALID_INPUT", fmt.Sprintf("%s is a directory", path), common.ErrInvalidInput)
	}
	if info.Size() > maxSnapshotBytes {
		return "", common.NewAppError("INVALID_INPUT", fmt.Sprintf("%s is larger than %d bytes", path, maxSnapshotBytes), common.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if constants.IsHTML(filepath.Ext(path)) {
		return render.VisibleText(string(data))
	}
	return string(data), nil
}

// FileURL is the source URL recorded for a snapshot file.
func FileURL(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// SnapshotIngestor turns snapshot files into extraction jobs.
type SnapshotIngestor struct {
	queue  Enqueuer
	logger *slog.Logger
}

func NewSnapshotIngestor(queue Enqueuer, logger *slog.Logger) *SnapshotIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotIngestor{queue: queue, logger: logger}
}

// IngestPath reads one snapshot and queues it for extraction.
func (i *SnapshotIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.SourcePath = abs
	if !AllowedExt(filepath.Ext(abs)) {
		return out, common.NewAppError("INVALID_INPUT", fmt.Sprintf("unsupported snapshot type %q", filepath.Ext(abs)), common.ErrInvalidInput)
	}

	text, err := ReadSnapshot(abs)
	if err != nil {
		i.logger.Error("ingest.snapshot.read_failed", "path", abs, "err", err)
		return out, err
	}
	out.TextBytes = len(text)
	out.TraceID = uuid.NewString()

	job := async.Job{
		URL:         FileURL(abs),
		Text:        &text,
		SourcePath:  abs,
		SubmittedAt: time.Now(),
		TraceID:     out.TraceID,
	}
	if err := i.queue.Enqueue(ctx, job); err != nil {
		return out, fmt.Errorf("enqueue %s: %w", abs, err)
	}
	i.logger.Info("ingest.snapshot.queued", "path", abs, "bytes", len(text), "trace_id", out.TraceID)
	return out, nil
}

// IngestDirectory walks root and ingests every snapshot file, skipping hidden
// entries when asked. Per-file failures are reported, not returned.
func (i *SnapshotIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var (
		results []IngestionResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		res, err := i.IngestPath(ctx, path)
		if err != nil {
			res.Err = err.Error()
			stats.Failed++
		} else {
			stats.Succeeded++
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return results, stats, err
	}
	i.logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

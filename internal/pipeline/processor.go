// Package pipeline runs one extraction end to end: render the listing, pull
// offer records out of its text, store them and write the artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/catalog"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/export"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
	"github.com/joseph-ayodele/loan-offers/internal/render"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

// Deps wires a Processor. Renderer is only needed by Run; Runs, Products and
// Exporter may be nil to skip persistence or artifacts.
type Deps struct {
	Logger    *slog.Logger
	Catalog   offers.Catalog
	Options   offers.Options
	Renderer  render.Renderer
	Runs      repository.RunRepository
	Products  repository.ProductRepository
	Exporter  *export.Service
	OutputDir string
}

// Processor coordinates render, extraction, persistence and export.
type Processor struct {
	logger    *slog.Logger
	catalog   offers.Catalog
	extractor *offers.Extractor
	renderer  render.Renderer
	runs      repository.RunRepository
	products  repository.ProductRepository
	exporter  *export.Service
	outputDir string
	now       func() time.Time
}

// Result is what one run produced.
type Result struct {
	RunID      uuid.UUID
	Collection offers.Collection
	Stored     int
	Artifacts  export.Artifacts
}

func NewProcessor(d Deps) (*Processor, error) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	ex, err := offers.NewExtractor(d.Catalog, d.Options)
	if err != nil {
		return nil, err
	}
	return &Processor{
		logger:    d.Logger,
		catalog:   d.Catalog,
		extractor: ex,
		renderer:  d.Renderer,
		runs:      d.Runs,
		products:  d.Products,
		exporter:  d.Exporter,
		outputDir: d.OutputDir,
		now:       time.Now,
	}, nil
}

// Run renders url and extracts from the rendered text.
func (p *Processor) Run(ctx context.Context, url string) (Result, error) {
	if p.renderer == nil {
		return Result{}, common.NewAppError("CONFIG_ERROR", "no renderer configured", common.ErrInvalidInput)
	}
	runID, ctx, err := p.start(ctx, url)
	if err != nil {
		return Result{}, err
	}
	logger := common.LoggerFromContext(ctx, p.logger)

	snap, err := p.renderer.Render(ctx, url)
	if err != nil {
		logger.Error("pipeline.render.failed", "url", url, "err", err)
		p.fail(ctx, runID, err)
		return Result{RunID: runID}, err
	}
	return p.process(ctx, runID, url, snap.Text, snap.RenderedAt)
}

// ExtractText runs the pipeline over text that was captured elsewhere, such as
// a saved snapshot. url is recorded as the source.
func (p *Processor) ExtractText(ctx context.Context, url, text string) (Result, error) {
	runID, ctx, err := p.start(ctx, url)
	if err != nil {
		return Result{}, err
	}
	return p.process(ctx, runID, url, text, p.now())
}

func (p *Processor) start(ctx context.Context, url string) (uuid.UUID, context.Context, error) {
	runID := uuid.New()
	if p.runs != nil {
		run, err := p.runs.Start(ctx, url)
		if err != nil {
			p.logger.Error("pipeline.run.start_failed", "url", url, "err", err)
			return uuid.Nil, ctx, fmt.Errorf("start run: %w", err)
		}
		runID = run.ID
	}
	return runID, common.WithRunID(ctx, runID.String()), nil
}

func (p *Processor) process(ctx context.Context, runID uuid.UUID, url, text string, at time.Time) (Result, error) {
	logger := common.LoggerFromContext(ctx, p.logger)
	start := time.Now()
	res := Result{RunID: runID}

	records, err := p.extractor.Extract(text)
	if err != nil {
		logger.Error("pipeline.extract.failed", "url", url, "err", err)
		p.fail(ctx, runID, err)
		return res, err
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		for _, nm := range catalog.NearMisses(offers.SplitLines(text), p.catalog, catalog.DefaultSimilarity) {
			logger.Debug("pipeline.catalog.near_miss",
				"line", nm.Line, "text", nm.Text,
				"entry", nm.Entry.Name(), "similarity", nm.Similarity,
			)
		}
	}
	res.Collection = offers.NewCollection(url, at, records)
	logger.Info("pipeline.extract.ok", "url", url, "records", len(records), "text_bytes", len(text))

	if p.products != nil {
		n, err := p.products.UpsertRecords(ctx, runID, url, records)
		if err != nil {
			logger.Error("pipeline.persist.failed", "err", err)
			p.fail(ctx, runID, err)
			return res, fmt.Errorf("store products: %w", err)
		}
		res.Stored = n
	}

	if p.exporter != nil && p.outputDir != "" {
		out, err := p.exporter.WriteArtifacts(p.outputDir, res.Collection)
		if err != nil {
			logger.Error("pipeline.export.failed", "dir", p.outputDir, "err", err)
			p.fail(ctx, runID, err)
			return res, fmt.Errorf("write artifacts: %w", err)
		}
		res.Artifacts = out
	}

	if p.runs != nil {
		if err := p.runs.Finish(ctx, runID, len(records)); err != nil {
			return res, fmt.Errorf("finish run: %w", err)
		}
	}
	logger.Info("pipeline.run.ok",
		"url", url,
		"records", len(records),
		"stored", res.Stored,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// fail records the failure on the run row. The run context may already be
// cancelled, so the update gets a short context of its own.
func (p *Processor) fail(ctx context.Context, runID uuid.UUID, cause error) {
	if p.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.runs.Fail(ctx, runID, cause.Error()); err != nil && !errors.Is(err, common.ErrNotFound) {
		p.logger.Error("pipeline.run.fail_failed", "run_id", runID, "err", err)
	}
}

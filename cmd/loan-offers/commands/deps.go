package commands

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/loan-offers/internal/cache"
	"github.com/joseph-ayodele/loan-offers/internal/catalog"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/export"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
	"github.com/joseph-ayodele/loan-offers/internal/pipeline"
	"github.com/joseph-ayodele/loan-offers/internal/render"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

// store bundles an open database with its repositories.
type store struct {
	drv  *entsql.Driver
	pool *pgxpool.Pool

	runs       repository.RunRepository
	products   repository.ProductRepository
	applicants repository.ApplicantRepository
	matches    repository.MatchRepository
}

func (s *store) Close() {
	if s != nil {
		repository.Close(s.drv, s.pool, logger)
	}
}

// openStore connects and migrates. When no database is configured it returns
// nil, or an error if required is set.
func openStore(ctx context.Context, required bool) (*store, error) {
	db := cfg.Database
	if db.Driver == "postgres" && db.DSN == "" {
		if required {
			return nil, common.NewAppError("CONFIG_ERROR", "DB_URL is required for this command", common.ErrInvalidInput)
		}
		logger.Info("no database configured; results are not stored")
		return nil, nil
	}
	drv, pool, err := repository.Open(ctx, repository.Config{
		Driver:           db.Driver,
		DSN:              db.DSN,
		MaxConns:         db.MaxConns,
		MinConns:         db.MinConns,
		MaxConnLifetime:  db.MaxConnLifetime,
		MaxConnIdleTime:  db.MaxConnIdleTime,
		DialTimeout:      db.DialTimeout,
		StatementTimeout: db.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &store{drv: drv, pool: pool}
	if err := repository.Migrate(ctx, drv, logger); err != nil {
		s.Close()
		return nil, err
	}
	s.runs = repository.NewRunRepository(drv, logger)
	s.products = repository.NewProductRepository(drv, logger)
	s.applicants = repository.NewApplicantRepository(drv, logger)
	s.matches = repository.NewMatchRepository(drv, logger)
	return s, nil
}

func loadCatalog() (offers.Catalog, error) {
	if cfg.Scrape.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Scrape.CatalogFile, logger)
}

// newRenderer builds the configured renderer behind the snapshot cache.
func newRenderer(ctx context.Context) (render.Renderer, func(), error) {
	r, err := render.New(cfg.Browser, logger)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore := cache.Open(ctx, cfg.Cache, logger)
	return cache.NewCachingRenderer(r, store, cfg.Cache.SnapshotTTL, logger), closeStore, nil
}

// newProcessor wires a pipeline over the catalog, the renderer (may be nil)
// and the store (may be nil).
func newProcessor(st *store, r render.Renderer, outputDir string) (*pipeline.Processor, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	d := pipeline.Deps{
		Logger:    logger,
		Catalog:   cat,
		Options:   cfg.Scrape.ExtractorOptions(),
		Renderer:  r,
		Exporter:  export.NewService(cat.Names(), logger),
		OutputDir: outputDir,
	}
	if st != nil {
		d.Runs = st.runs
		d.Products = st.products
	}
	return pipeline.NewProcessor(d)
}

// nullable renders an optional field for terminal output.
func nullable(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

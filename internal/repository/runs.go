package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

const runsTable = "extraction_runs"

var runColumns = []string{"id", "source_url", "status", "record_count", "error_message", "started_at", "finished_at"}

type RunRepository interface {
	Start(ctx context.Context, sourceURL string) (*entity.Run, error)
	Finish(ctx context.Context, runID uuid.UUID, recordCount int) error
	Fail(ctx context.Context, runID uuid.UUID, message string) error
	Get(ctx context.Context, runID uuid.UUID) (*entity.Run, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Run, error)
}

type runRepo struct {
	drv *entsql.Driver
	log *slog.Logger
	now func() time.Time
}

func NewRunRepository(drv *entsql.Driver, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{drv: drv, log: log, now: time.Now}
}

func (r *runRepo) Start(ctx context.Context, sourceURL string) (*entity.Run, error) {
	run := &entity.Run{
		ID:        uuid.New(),
		SourceURL: sourceURL,
		Status:    string(constants.RunStatusRunning),
		StartedAt: r.now().UTC(),
	}
	stmt, args := entsql.Dialect(r.drv.Dialect()).
		Insert(runsTable).
		Columns("id", "source_url", "status", "record_count", "started_at").
		Values(run.ID.String(), run.SourceURL, run.Status, 0, formatTime(run.StartedAt)).
		Query()
	if err := r.drv.Exec(ctx, stmt, args, nil); err != nil {
		r.log.Error("extraction_run start failed", "source_url", sourceURL, "err", err)
		return nil, common.NewAppError("DB_ERROR", "start run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.log.Info("extraction_run started", "run_id", run.ID, "source_url", sourceURL)
	return run, nil
}

func (r *runRepo) Finish(ctx context.Context, runID uuid.UUID, recordCount int) error {
	stmt, args := entsql.Dialect(r.drv.Dialect()).
		Update(runsTable).
		Set("status", string(constants.RunStatusExtracted)).
		Set("record_count", recordCount).
		Set("finished_at", formatTime(r.now())).
		Where(entsql.EQ("id", runID.String())).
		Query()
	if err := r.exec(ctx, runID, stmt, args); err != nil {
		r.log.Error("extraction_run finish(EXTRACTED) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("extraction_run finished (EXTRACTED)", "run_id", runID, "records", recordCount)
	return nil
}

func (r *runRepo) Fail(ctx context.Context, runID uuid.UUID, message string) error {
	stmt, args := entsql.Dialect(r.drv.Dialect()).
		Update(runsTable).
		Set("status", string(constants.RunStatusFailed)).
		Set("error_message", message).
		Set("finished_at", formatTime(r.now())).
		Where(entsql.EQ("id", runID.String())).
		Query()
	if err := r.exec(ctx, runID, stmt, args); err != nil {
		r.log.Error("extraction_run finish(FAILED) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Warn("extraction_run finished (FAILED)", "run_id", runID, "error", message)
	return nil
}

func (r *runRepo) exec(ctx context.Context, runID uuid.UUID, stmt string, args []any) error {
	var res sql.Result
	if err := r.drv.Exec(ctx, stmt, args, &res); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if affected(res) == 0 {
		return fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, runID uuid.UUID) (*entity.Run, error) {
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(runColumns...).
		From(b.Table(runsTable)).
		Where(entsql.EQ("id", runID.String())).
		Query()
	runs, err := r.list(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, common.ErrNotFound)
	}
	return &runs[0], nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(runColumns...).
		From(b.Table(runsTable)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	return r.list(ctx, stmt, args)
}

func (r *runRepo) list(ctx context.Context, stmt string, args []any) ([]entity.Run, error) {
	var out []entity.Run
	err := query(ctx, r.drv, stmt, args, func(rows *entsql.Rows) error {
		var (
			id, sourceURL, status, startedAt string
			count                            int64
			errMsg, finishedAt               sql.NullString
		)
		if err := rows.Scan(&id, &sourceURL, &status, &count, &errMsg, &startedAt, &finishedAt); err != nil {
			return err
		}
		run := entity.Run{SourceURL: sourceURL, Status: status, RecordCount: int(count), ErrorMessage: stringPtr(errMsg)}
		var err error
		if run.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return err
		}
		if run.FinishedAt, err = parseNullTime(finishedAt); err != nil {
			return err
		}
		out = append(out, run)
		return nil
	})
	if err != nil {
		r.log.Error("extraction_run query failed", "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

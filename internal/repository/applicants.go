package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

const applicantsTable = "applicants"

var applicantColumns = []string{"user_id", "name", "email", "monthly_income", "credit_score", "employment_status", "age", "created_at"}

type ApplicantRepository interface {
	Upsert(ctx context.Context, applicants []entity.Applicant) (int, error)
	List(ctx context.Context) ([]entity.Applicant, error)
	GetByEmail(ctx context.Context, email string) (*entity.Applicant, error)
}

type applicantRepo struct {
	drv *entsql.Driver
	log *slog.Logger
	now func() time.Time
}

func NewApplicantRepository(drv *entsql.Driver, log *slog.Logger) ApplicantRepository {
	if log == nil {
		log = slog.Default()
	}
	return &applicantRepo{drv: drv, log: log, now: time.Now}
}

func (r *applicantRepo) Upsert(ctx context.Context, applicants []entity.Applicant) (int, error) {
	if len(applicants) == 0 {
		return 0, nil
	}
	insert := entsql.Dialect(r.drv.Dialect()).
		Insert(applicantsTable).
		Columns(applicantColumns...)
	for _, a := range applicants {
		created := a.CreatedAt
		if created.IsZero() {
			created = r.now()
		}
		insert.Values(a.UserID, a.Name, a.Email, a.MonthlyIncome, a.CreditScore, a.EmploymentStatus, a.Age, formatTime(created))
	}
	insert.OnConflict(
		entsql.ConflictColumns("user_id"),
		entsql.ResolveWith(func(u *entsql.UpdateSet) {
			for _, c := range applicantColumns[1:7] {
				u.SetExcluded(c)
			}
		}),
	)
	stmt, args := insert.Query()
	err := inTx(ctx, r.drv, func(tx dialect.Tx) error {
		return tx.Exec(ctx, stmt, args, nil)
	})
	if err != nil {
		r.log.Error("applicants upsert failed", "count", len(applicants), "err", err)
		return 0, fmt.Errorf("%w: upsert applicants: %v", common.ErrDatabase, err)
	}
	r.log.Info("applicants upserted", "count", len(applicants))
	return len(applicants), nil
}

func (r *applicantRepo) List(ctx context.Context) ([]entity.Applicant, error) {
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(applicantColumns...).
		From(b.Table(applicantsTable)).
		OrderBy("user_id").
		Query()
	return r.list(ctx, stmt, args)
}

func (r *applicantRepo) GetByEmail(ctx context.Context, email string) (*entity.Applicant, error) {
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(applicantColumns...).
		From(b.Table(applicantsTable)).
		Where(entsql.EQ("email", email)).
		Query()
	out, err := r.list(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("applicant %q: %w", email, common.ErrNotFound)
	}
	return &out[0], nil
}

func (r *applicantRepo) list(ctx context.Context, stmt string, args []any) ([]entity.Applicant, error) {
	var out []entity.Applicant
	err := query(ctx, r.drv, stmt, args, func(rows *entsql.Rows) error {
		var (
			a                  entity.Applicant
			income, score, age int64
			createdAt          string
		)
		if err := rows.Scan(&a.UserID, &a.Name, &a.Email, &income, &score, &a.EmploymentStatus, &age, &createdAt); err != nil {
			return err
		}
		a.MonthlyIncome, a.CreditScore, a.Age = int(income), int(score), int(age)
		var err error
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		r.log.Error("applicants query failed", "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

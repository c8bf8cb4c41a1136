package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

const productsTable = "loan_products"

var productColumns = []string{
	"product_id", "product_name",
	"interest_rate", "minimum_income_required", "minimum_credit_score_needed", "loan_amount",
	"minimum_age", "raw_text",
	"interest_rate_value", "min_income_value", "min_credit_score_value", "min_age_value", "loan_amount_max_value",
	"run_id", "source_url", "updated_at",
}

type ProductRepository interface {
	// UpsertRecords stores records keyed by product name and returns how many
	// distinct products were written. When a name repeats, the first record wins.
	UpsertRecords(ctx context.Context, runID uuid.UUID, sourceURL string, records []offers.Record) (int, error)
	List(ctx context.Context) ([]entity.LoanProduct, error)
	GetByName(ctx context.Context, productName string) (*entity.LoanProduct, error)
}

type productRepo struct {
	drv *entsql.Driver
	log *slog.Logger
	now func() time.Time
}

func NewProductRepository(drv *entsql.Driver, log *slog.Logger) ProductRepository {
	if log == nil {
		log = slog.Default()
	}
	return &productRepo{drv: drv, log: log, now: time.Now}
}

func (r *productRepo) UpsertRecords(ctx context.Context, runID uuid.UUID, sourceURL string, records []offers.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	at := r.now()
	seen := make(map[string]struct{}, len(records))
	insert := entsql.Dialect(r.drv.Dialect()).
		Insert(productsTable).
		Columns(productColumns...)
	n := 0
	for _, rec := range records {
		if _, dup := seen[rec.ProductName]; dup {
			continue
		}
		seen[rec.ProductName] = struct{}{}
		p := entity.ProductFromRecord(rec, &runID, sourceURL, at)
		insert.Values(
			p.ID.String(), p.ProductName,
			nullable(p.InterestRate), nullable(p.MinimumIncomeRequired), nullable(p.MinimumCreditScoreNeeded), nullable(p.LoanAmount),
			p.MinimumAge, p.RawText,
			nullable(p.InterestRateValue), nullable(p.MinIncome), nullable(p.MinCreditScore), nullable(p.MinAge), nullable(p.LoanAmountMax),
			runID.String(), p.SourceURL, formatTime(p.UpdatedAt),
		)
		n++
	}
	insert.OnConflict(
		entsql.ConflictColumns("product_name"),
		entsql.ResolveWith(func(u *entsql.UpdateSet) {
			for _, c := range productColumns[2:] {
				u.SetExcluded(c)
			}
		}),
	)
	stmt, args := insert.Query()

	err := inTx(ctx, r.drv, func(tx dialect.Tx) error {
		return tx.Exec(ctx, stmt, args, nil)
	})
	if err != nil {
		r.log.Error("loan_products upsert failed", "run_id", runID, "err", err)
		return 0, fmt.Errorf("%w: upsert products: %v", common.ErrDatabase, err)
	}
	r.log.Info("loan_products upserted", "run_id", runID, "products", n)
	return n, nil
}

func (r *productRepo) List(ctx context.Context) ([]entity.LoanProduct, error) {
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(productColumns...).
		From(b.Table(productsTable)).
		OrderBy("product_name").
		Query()
	return r.list(ctx, stmt, args)
}

func (r *productRepo) GetByName(ctx context.Context, productName string) (*entity.LoanProduct, error) {
	b := entsql.Dialect(r.drv.Dialect())
	stmt, args := b.Select(productColumns...).
		From(b.Table(productsTable)).
		Where(entsql.EQ("product_name", productName)).
		Query()
	out, err := r.list(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("product %q: %w", productName, common.ErrNotFound)
	}
	return &out[0], nil
}

func (r *productRepo) list(ctx context.Context, stmt string, args []any) ([]entity.LoanProduct, error) {
	var out []entity.LoanProduct
	err := query(ctx, r.drv, stmt, args, func(rows *entsql.Rows) error {
		p, err := scanProduct(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		r.log.Error("loan_products query failed", "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

// scanProduct reads the productColumns in order.
func scanProduct(rows interface{ Scan(...any) error }) (entity.LoanProduct, error) {
	var (
		p                                  entity.LoanProduct
		id, updatedAt                      string
		rate, income, score, amount, runID sql.NullString
		rateValue, amountMax               sql.NullFloat64
		incomeValue, scoreValue, ageValue  sql.NullInt64
	)
	err := rows.Scan(
		&id, &p.ProductName,
		&rate, &income, &score, &amount,
		&p.MinimumAge, &p.RawText,
		&rateValue, &incomeValue, &scoreValue, &ageValue, &amountMax,
		&runID, &p.SourceURL, &updatedAt,
	)
	if err != nil {
		return p, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, err
	}
	if runID.Valid {
		rid, err := uuid.Parse(runID.String)
		if err != nil {
			return p, err
		}
		p.RunID = &rid
	}
	p.InterestRate = stringPtr(rate)
	p.MinimumIncomeRequired = stringPtr(income)
	p.MinimumCreditScoreNeeded = stringPtr(score)
	p.LoanAmount = stringPtr(amount)
	p.InterestRateValue = floatPtr(rateValue)
	p.MinIncome = intPtr(incomeValue)
	p.MinCreditScore = intPtr(scoreValue)
	p.MinAge = intPtr(ageValue)
	p.LoanAmountMax = floatPtr(amountMax)
	return p, nil
}

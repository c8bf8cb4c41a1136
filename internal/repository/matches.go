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
)

const matchesTable = "matches"

var matchColumns = []string{"id", "user_id", "product_id", "match_score", "match_reason", "created_at", "notified_at"}

type MatchRepository interface {
	// Replace makes the given set an applicant's stored matches in one
	// transaction. Pairs no longer matched are dropped; pairs still matched are
	// updated in place and keep their notification state.
	Replace(ctx context.Context, userID string, matches []entity.Match) error
	// ListForApplicant returns matches joined with their products, best first.
	ListForApplicant(ctx context.Context, userID string, pendingOnly bool) ([]entity.MatchView, error)
	MarkNotified(ctx context.Context, matchIDs []uuid.UUID, at time.Time) error
}

type matchRepo struct {
	drv *entsql.Driver
	log *slog.Logger
	now func() time.Time
}

func NewMatchRepository(drv *entsql.Driver, log *slog.Logger) MatchRepository {
	if log == nil {
		log = slog.Default()
	}
	return &matchRepo{drv: drv, log: log, now: time.Now}
}

func (r *matchRepo) Replace(ctx context.Context, userID string, matches []entity.Match) error {
	b := entsql.Dialect(r.drv.Dialect())

	del := b.Delete(matchesTable)
	if len(matches) == 0 {
		del.Where(entsql.EQ("user_id", userID))
	} else {
		keep := make([]any, len(matches))
		for i, m := range matches {
			keep[i] = m.ProductID.String()
		}
		del.Where(entsql.And(entsql.EQ("user_id", userID), entsql.NotIn("product_id", keep...)))
	}
	delStmt, delArgs := del.Query()

	var insStmt string
	var insArgs []any
	if len(matches) > 0 {
		insert := b.Insert(matchesTable).Columns(matchColumns[:6]...)
		for _, m := range matches {
			id := m.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			created := m.CreatedAt
			if created.IsZero() {
				created = r.now()
			}
			insert.Values(id.String(), userID, m.ProductID.String(), m.MatchScore, m.MatchReason, formatTime(created))
		}
		// A pair that is still matched keeps its id, created_at and notified_at.
		insert.OnConflict(
			entsql.ConflictColumns("user_id", "product_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("match_score")
				u.SetExcluded("match_reason")
			}),
		)
		insStmt, insArgs = insert.Query()
	}

	err := inTx(ctx, r.drv, func(tx dialect.Tx) error {
		if err := tx.Exec(ctx, delStmt, delArgs, nil); err != nil {
			return err
		}
		if insStmt == "" {
			return nil
		}
		return tx.Exec(ctx, insStmt, insArgs, nil)
	})
	if err != nil {
		r.log.Error("matches replace failed", "user_id", userID, "err", err)
		return fmt.Errorf("%w: replace matches: %v", common.ErrDatabase, err)
	}
	r.log.Info("matches replaced", "user_id", userID, "count", len(matches))
	return nil
}

func (r *matchRepo) ListForApplicant(ctx context.Context, userID string, pendingOnly bool) ([]entity.MatchView, error) {
	b := entsql.Dialect(r.drv.Dialect())
	m := b.Table(matchesTable).As("m")
	p := b.Table(productsTable).As("p")

	columns := make([]string, 0, len(matchColumns)+len(productColumns))
	for _, c := range matchColumns {
		columns = append(columns, m.C(c))
	}
	for _, c := range productColumns {
		columns = append(columns, p.C(c))
	}
	where := entsql.EQ(m.C("user_id"), userID)
	if pendingOnly {
		where = entsql.And(where, entsql.IsNull(m.C("notified_at")))
	}
	stmt, args := b.Select(columns...).
		From(m).
		Join(p).On(m.C("product_id"), p.C("product_id")).
		Where(where).
		OrderBy(entsql.Desc("match_score"), "product_name").
		Query()

	var out []entity.MatchView
	err := query(ctx, r.drv, stmt, args, func(rows *entsql.Rows) error {
		var (
			v                        entity.MatchView
			id, productID, createdAt string
			notifiedAt               sql.NullString
		)
		dest := []any{&id, &v.UserID, &productID, &v.MatchScore, &v.MatchReason, &createdAt, &notifiedAt}
		prod, err := scanProduct(scanPrefix{rows: rows, prefix: dest})
		if err != nil {
			return err
		}
		v.Product = prod
		if v.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		if v.ProductID, err = uuid.Parse(productID); err != nil {
			return err
		}
		if v.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if v.NotifiedAt, err = parseNullTime(notifiedAt); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		r.log.Error("matches query failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *matchRepo) MarkNotified(ctx context.Context, matchIDs []uuid.UUID, at time.Time) error {
	if len(matchIDs) == 0 {
		return nil
	}
	ids := make([]any, len(matchIDs))
	for i, id := range matchIDs {
		ids[i] = id.String()
	}
	stmt, args := entsql.Dialect(r.drv.Dialect()).
		Update(matchesTable).
		Set("notified_at", formatTime(at)).
		Where(entsql.In("id", ids...)).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, stmt, args, &res); err != nil {
		r.log.Error("matches mark notified failed", "count", len(matchIDs), "err", err)
		return fmt.Errorf("%w: mark notified: %v", common.ErrDatabase, err)
	}
	r.log.Info("matches marked notified", "count", affected(res))
	return nil
}

// scanPrefix scans the leading columns into prefix and the rest into the
// caller's destinations.
type scanPrefix struct {
	rows   *entsql.Rows
	prefix []any
}

func (s scanPrefix) Scan(dest ...any) error {
	return s.rows.Scan(append(append([]any{}, s.prefix...), dest...)...)
}

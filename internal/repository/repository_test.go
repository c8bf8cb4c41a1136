package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

func ptr(s string) *string { return &s }

func openTestDB(t *testing.T) *entsql.Driver {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	drv, pool, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	require.Nil(t, pool)
	t.Cleanup(func() { Close(drv, pool, logger) })

	require.NoError(t, Migrate(ctx, drv, logger))
	require.NoError(t, Migrate(ctx, drv, logger), "migrations are idempotent")
	require.NoError(t, HealthCheck(ctx, drv, pool, time.Second, logger))
	return drv
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestRunRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openTestDB(t), nil)

	run, err := runs.Start(ctx, "https://example.test/loans")
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), run.Status)

	require.NoError(t, runs.Finish(ctx, run.ID, 4))
	got, err := runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusExtracted), got.Status)
	assert.Equal(t, 4, got.RecordCount)
	require.NotNil(t, got.FinishedAt)
	assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Microsecond)

	failed, err := runs.Start(ctx, "https://example.test/other")
	require.NoError(t, err)
	require.NoError(t, runs.Fail(ctx, failed.ID, "navigation timeout"))
	got, err = runs.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), got.Status)
	assert.Equal(t, ptr("navigation timeout"), got.ErrorMessage)

	recent, err := runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, failed.ID, recent[0].ID)

	_, err = runs.Get(ctx, uuid.New())
	assert.True(t, common.IsNotFound(err))
	assert.True(t, common.IsNotFound(runs.Finish(ctx, uuid.New(), 1)))
}

func TestProductRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	products := NewProductRepository(openTestDB(t), nil)
	runID := uuid.New()

	records := []offers.Record{
		{ProductName: "HDFC Bank Personal Loan", InterestRate: ptr("10.50%"), MinimumIncomeRequired: ptr("₹25000"),
			MinimumCreditScoreNeeded: ptr("720+"), LoanAmount: ptr("up to ₹40L"), MinimumAge: "21 years", RawText: "first"},
		{ProductName: "HDFC Bank Personal Loan", InterestRate: ptr("99%"), MinimumAge: "21 years", RawText: "repeat"},
		{ProductName: "Foo Lender", MinimumAge: "21 years", RawText: "bare"},
	}
	n, err := products.UpsertRecords(ctx, runID, "https://example.test", records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := products.GetByName(ctx, "HDFC Bank Personal Loan")
	require.NoError(t, err)
	assert.Equal(t, "first", got.RawText)
	assert.Equal(t, entity.ProductID("HDFC Bank Personal Loan"), got.ID)
	require.NotNil(t, got.MinIncome)
	assert.Equal(t, 25000, *got.MinIncome)
	assert.Equal(t, 720, *got.MinCreditScore)
	assert.InDelta(t, 4_000_000, *got.LoanAmountMax, 1e-6)
	require.NotNil(t, got.RunID)
	assert.Equal(t, runID, *got.RunID)

	bare, err := products.GetByName(ctx, "Foo Lender")
	require.NoError(t, err)
	assert.Nil(t, bare.InterestRate)
	assert.Nil(t, bare.InterestRateValue)
	assert.Equal(t, 21, *bare.MinAge)

	// A later run updates in place.
	_, err = products.UpsertRecords(ctx, uuid.New(), "https://example.test", []offers.Record{
		{ProductName: "Foo Lender", InterestRate: ptr("14%"), MinimumCreditScoreNeeded: ptr("650+"), MinimumAge: "23 years", RawText: "updated"},
	})
	require.NoError(t, err)
	all, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Foo Lender", all[0].ProductName)
	assert.Equal(t, "updated", all[0].RawText)
	assert.Equal(t, 650, *all[0].MinCreditScore)

	n, err = products.UpsertRecords(ctx, runID, "x", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = products.GetByName(ctx, "missing")
	assert.True(t, common.IsNotFound(err))
}

func TestApplicantAndMatchRepositories(t *testing.T) {
	ctx := context.Background()
	drv := openTestDB(t)
	applicants := NewApplicantRepository(drv, nil)
	products := NewProductRepository(drv, nil)
	matches := NewMatchRepository(drv, nil)

	_, err := products.UpsertRecords(ctx, uuid.New(), "https://example.test", []offers.Record{
		{ProductName: "A Loan", InterestRate: ptr("11%"), MinimumAge: "21 years", RawText: "a"},
		{ProductName: "B Loan", InterestRate: ptr("13%"), MinimumAge: "21 years", RawText: "b"},
	})
	require.NoError(t, err)

	n, err := applicants.Upsert(ctx, []entity.Applicant{
		{UserID: "u1", Name: "Asha", Email: "asha@example.com", MonthlyIncome: 60000, CreditScore: 760, EmploymentStatus: "salaried", Age: 30},
		{UserID: "u2", Name: "Ravi", Email: "ravi@example.com", MonthlyIncome: 30000, CreditScore: 640, EmploymentStatus: "self-employed", Age: 41},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = applicants.Upsert(ctx, []entity.Applicant{
		{UserID: "u1", Name: "Asha K", Email: "asha@example.com", MonthlyIncome: 65000, CreditScore: 770, EmploymentStatus: "salaried", Age: 31},
	})
	require.NoError(t, err)
	asha, err := applicants.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", asha.Name)
	assert.Equal(t, 65000, asha.MonthlyIncome)

	list, err := applicants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = applicants.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, common.IsNotFound(err))

	require.NoError(t, matches.Replace(ctx, "u1", []entity.Match{
		{ProductID: entity.ProductID("A Loan"), MatchScore: 0.7, MatchReason: "a"},
		{ProductID: entity.ProductID("B Loan"), MatchScore: 0.9, MatchReason: "b"},
	}))
	views, err := matches.ListForApplicant(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "B Loan", views[0].Product.ProductName)
	assert.Equal(t, "u1", views[0].UserID)
	assert.InDelta(t, 0.9, views[0].MatchScore, 1e-9)

	require.NoError(t, matches.MarkNotified(ctx, []uuid.UUID{views[0].ID}, time.Now()))
	pending, err := matches.ListForApplicant(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "A Loan", pending[0].Product.ProductName)

	all, err := matches.ListForApplicant(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Re-matching the same pairs keeps ids and notification state.
	require.NoError(t, matches.Replace(ctx, "u1", []entity.Match{
		{ProductID: entity.ProductID("A Loan"), MatchScore: 0.75, MatchReason: "a2"},
		{ProductID: entity.ProductID("B Loan"), MatchScore: 0.9, MatchReason: "b"},
	}))
	pending, err = matches.ListForApplicant(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "A Loan", pending[0].Product.ProductName)
	assert.InDelta(t, 0.75, pending[0].MatchScore, 1e-9)
	assert.Equal(t, "a2", pending[0].MatchReason)
	all, err = matches.ListForApplicant(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, views[0].ID, all[0].ID)
	require.NotNil(t, all[0].NotifiedAt)

	// Pairs that no longer match are dropped.
	require.NoError(t, matches.Replace(ctx, "u1", []entity.Match{
		{ProductID: entity.ProductID("B Loan"), MatchScore: 0.9, MatchReason: "b"},
	}))
	all, err = matches.ListForApplicant(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B Loan", all[0].Product.ProductName)

	require.NoError(t, matches.Replace(ctx, "u1", nil))
	all, err = matches.ListForApplicant(ctx, "u1", false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

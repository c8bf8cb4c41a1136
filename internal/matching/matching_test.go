package matching

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a    entity.Applicant
		want float64
	}{
		{"self-employed mid career", entity.Applicant{MonthlyIncome: 131000, CreditScore: 725, EmploymentStatus: "Self-Employed", Age: 37}, 62.13},
		{"salaried low income", entity.Applicant{MonthlyIncome: 35000, CreditScore: 800, EmploymentStatus: "Salaried", Age: 34}, 62.04},
		{"ceiling", entity.Applicant{MonthlyIncome: 500000, CreditScore: 900, EmploymentStatus: "salaried", Age: 45}, 100},
		{"floor", entity.Applicant{MonthlyIncome: 0, CreditScore: 300, EmploymentStatus: "student", Age: 80}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.a), 1e-9)
		})
	}
}

func TestAgeMultiplier(t *testing.T) {
	assert.InDelta(t, 0.5*20/21.0, ageMultiplier(20), 1e-9)
	assert.InDelta(t, 1.0, ageMultiplier(45), 1e-9)
	assert.InDelta(t, 1-24/44.0, ageMultiplier(21), 1e-9)
	assert.InDelta(t, 1-20/44.0, ageMultiplier(65), 1e-9)
	assert.InDelta(t, 0.5, ageMultiplier(70), 1e-9)
	assert.Zero(t, ageMultiplier(90))
}

func TestRateAttractiveness(t *testing.T) {
	assert.Equal(t, 0.5, RateAttractiveness(nil))
	assert.Equal(t, 1.0, RateAttractiveness(floatp(9.5)))
	assert.Equal(t, 0.0, RateAttractiveness(floatp(30)))
	assert.InDelta(t, 0.5, RateAttractiveness(floatp(17.5)), 1e-9)
}

func TestEligible(t *testing.T) {
	a := entity.Applicant{MonthlyIncome: 30000, CreditScore: 700, Age: 23}

	ok, _ := Eligible(a, entity.LoanProduct{})
	assert.True(t, ok, "a product without criteria excludes nobody")

	ok, why := Eligible(a, entity.LoanProduct{MinIncome: intp(35000)})
	assert.False(t, ok)
	assert.Contains(t, why, "income")

	ok, why = Eligible(a, entity.LoanProduct{MinCreditScore: intp(720)})
	assert.False(t, ok)
	assert.Contains(t, why, "credit")

	ok, _ = Eligible(a, entity.LoanProduct{MinAge: intp(25)})
	assert.False(t, ok)

	ok, _ = Eligible(a, entity.LoanProduct{MinIncome: intp(30000), MinCreditScore: intp(700), MinAge: intp(23)})
	assert.True(t, ok)
}

func TestMatch_Ordering(t *testing.T) {
	a := entity.Applicant{UserID: "u1", MonthlyIncome: 60000, CreditScore: 760, EmploymentStatus: "salaried", Age: 30}
	products := []entity.LoanProduct{
		{ID: uuid.New(), ProductName: "Zeta Loan", InterestRateValue: floatp(11), InterestRate: strp("11%")},
		{ID: uuid.New(), ProductName: "Alpha Loan", InterestRateValue: floatp(11), InterestRate: strp("11%")},
		{ID: uuid.New(), ProductName: "Cheap Loan", InterestRateValue: floatp(9)},
		{ID: uuid.New(), ProductName: "Strict Loan", MinCreditScore: intp(800)},
	}
	views := Match(a, products, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, views, 3)
	assert.Equal(t, "Cheap Loan", views[0].Product.ProductName)
	assert.Equal(t, "Alpha Loan", views[1].Product.ProductName)
	assert.Equal(t, "Zeta Loan", views[2].Product.ProductName)
	assert.Equal(t, "Income: ₹60000, Credit Score: 760, Interest: 11%", views[1].MatchReason)
	assert.Equal(t, "Income: ₹60000, Credit Score: 760, Interest: n/a", views[0].MatchReason)
	for _, v := range views {
		assert.GreaterOrEqual(t, v.MatchScore, 0.0)
		assert.LessOrEqual(t, v.MatchScore, 1.0)
		assert.Equal(t, "u1", v.UserID)
		assert.Equal(t, v.Product.ID, v.ProductID)
	}
	assert.Len(t, Matches(views), 3)
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	drv, pool, err := repository.Open(ctx, repository.Config{Driver: "sqlite"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(drv, pool, logger) })
	require.NoError(t, repository.Migrate(ctx, drv, logger))

	products := repository.NewProductRepository(drv, logger)
	applicants := repository.NewApplicantRepository(drv, logger)
	matches := repository.NewMatchRepository(drv, logger)
	_, err = products.UpsertRecords(ctx, uuid.New(), "https://example.test", []offers.Record{
		{ProductName: "HDFC Bank Personal Loan", InterestRate: strp("10.50%"), MinimumCreditScoreNeeded: strp("720+"), MinimumAge: "21 years"},
		{ProductName: "Tata Capital Personal Loan", InterestRate: strp("16%"), MinimumCreditScoreNeeded: strp("600+"), MinimumAge: "21 years"},
	})
	require.NoError(t, err)

	svc := NewService(products, applicants, matches, logger)
	sum, err := svc.Run(ctx, []entity.Applicant{
		{UserID: "u1", Name: "Asha", Email: "asha@example.com", MonthlyIncome: 75000, CreditScore: 780, EmploymentStatus: "salaried", Age: 29},
		{UserID: "u2", Name: "Ravi", Email: "ravi@example.com", MonthlyIncome: 40000, CreditScore: 650, EmploymentStatus: "business", Age: 41},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Applicants)
	assert.Equal(t, 3, sum.Matches)
	assert.Len(t, sum.ByUser["u2"], 1)

	stored, err := matches.ListForApplicant(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "HDFC Bank Personal Loan", stored[0].Product.ProductName)

	// A second pass over stored applicants replaces rather than duplicates.
	sum, err = svc.Run(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Matches)
	stored, err = matches.ListForApplicant(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

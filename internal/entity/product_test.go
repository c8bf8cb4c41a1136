package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

func TestProductFromRecord(t *testing.T) {
	rate, income, score, amount := "10.50%", "₹25000", "720+", "up to ₹40L"
	rec := offers.Record{
		ProductName:              "HDFC Bank Personal Loan",
		InterestRate:             &rate,
		MinimumIncomeRequired:    &income,
		MinimumCreditScoreNeeded: &score,
		LoanAmount:               &amount,
		MinimumAge:               "21 years",
		RawText:                  "HDFC Bank Personal Loan 10.50% ...",
	}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))

	p := ProductFromRecord(rec, nil, "https://example.test", at)
	assert.Equal(t, ProductID("HDFC Bank Personal Loan"), p.ID)
	require.NotNil(t, p.InterestRateValue)
	assert.InDelta(t, 10.5, *p.InterestRateValue, 1e-9)
	assert.Equal(t, 25000, *p.MinIncome)
	assert.Equal(t, 720, *p.MinCreditScore)
	assert.Equal(t, 21, *p.MinAge)
	assert.InDelta(t, 4_000_000, *p.LoanAmountMax, 1e-6)
	assert.Equal(t, time.UTC, p.UpdatedAt.Location())
}

func TestProductID_Stable(t *testing.T) {
	assert.Equal(t, ProductID("Foo"), ProductID("Foo"))
	assert.NotEqual(t, ProductID("Foo"), ProductID("Bar"))
}

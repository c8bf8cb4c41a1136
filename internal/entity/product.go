package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// productNamespace scopes product IDs derived from product names.
var productNamespace = uuid.MustParse("6f1c2a4e-2b1d-4a52-9b7e-0d3f8f6c1a90")

// LoanProduct is a stored offer: the extracted strings plus values parsed from
// them for matching.
type LoanProduct struct {
	ID                       uuid.UUID `json:"id"`
	ProductName              string    `json:"product_name"`
	InterestRate             *string   `json:"interest_rate,omitempty"`
	MinimumIncomeRequired    *string   `json:"minimum_income_required,omitempty"`
	MinimumCreditScoreNeeded *string   `json:"minimum_credit_score_needed,omitempty"`
	LoanAmount               *string   `json:"loan_amount,omitempty"`
	MinimumAge               string    `json:"minimum_age"`
	RawText                  string    `json:"raw_text"`

	InterestRateValue *float64 `json:"interest_rate_value,omitempty"`
	MinIncome         *int     `json:"min_income,omitempty"`
	MinCreditScore    *int     `json:"min_credit_score,omitempty"`
	MinAge            *int     `json:"min_age,omitempty"`
	LoanAmountMax     *float64 `json:"loan_amount_max,omitempty"`

	RunID     *uuid.UUID `json:"run_id,omitempty"`
	SourceURL string     `json:"source_url"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ProductID is stable for a product name, so re-extraction updates rows in place.
func ProductID(productName string) uuid.UUID {
	return uuid.NewSHA1(productNamespace, []byte(productName))
}

// ProductFromRecord converts an extracted record into a storable product.
func ProductFromRecord(r offers.Record, runID *uuid.UUID, sourceURL string, at time.Time) LoanProduct {
	return LoanProduct{
		ID:                       ProductID(r.ProductName),
		ProductName:              r.ProductName,
		InterestRate:             r.InterestRate,
		MinimumIncomeRequired:    r.MinimumIncomeRequired,
		MinimumCreditScoreNeeded: r.MinimumCreditScoreNeeded,
		LoanAmount:               r.LoanAmount,
		MinimumAge:               r.MinimumAge,
		RawText:                  r.RawText,
		InterestRateValue:        offers.RateValue(r.InterestRate),
		MinIncome:                offers.IncomeValue(r.MinimumIncomeRequired),
		MinCreditScore:           offers.ScoreFloor(r.MinimumCreditScoreNeeded),
		MinAge:                   offers.AgeValue(r.MinimumAge),
		LoanAmountMax:            offers.AmountValue(r.LoanAmount),
		RunID:                    runID,
		SourceURL:                sourceURL,
		UpdatedAt:                at.UTC(),
	}
}

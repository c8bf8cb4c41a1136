// Package matching pairs applicants with the stored loan products they
// qualify for and ranks them.
package matching

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

// Normalization ranges for the applicant score.
const (
	MinIncome = 30000
	MaxIncome = 150000
	MinCredit = 600
	MaxCredit = 850
)

// Score rates an applicant from 0 to 100: credit weighs 50%, income 25%,
// employment 15%, and age scales a further 10% of the credit component.
func Score(a entity.Applicant) float64 {
	iNorm := clamp(float64(a.MonthlyIncome-MinIncome)/float64(MaxIncome-MinIncome)*100, 0, 100)
	cNorm := clamp(float64(a.CreditScore-MinCredit)/float64(MaxCredit-MinCredit)*100, 0, 100)

	eVal := 0.8
	if strings.EqualFold(strings.TrimSpace(a.EmploymentStatus), constants.EmploymentSalaried) {
		eVal = 1.0
	}

	final := 0.25*iNorm +
		0.50*cNorm +
		0.15*eVal*100 +
		0.10*ageMultiplier(a.Age)*cNorm
	return round(final, 2)
}

// ageMultiplier peaks at 45 and falls off linearly on both sides.
func ageMultiplier(age int) float64 {
	switch {
	case age < 21:
		return float64(age) / 21 * 0.5
	case age <= 65:
		return 1.0 - math.Abs(float64(age-45))/44
	default:
		return math.Max(0, 1.0-float64(age-65)/10)
	}
}

// RateAttractiveness maps an interest rate to [0,1]: 10% or lower is 1,
// 25% or higher is 0. Unknown rates score 0.5.
func RateAttractiveness(rate *float64) float64 {
	if rate == nil {
		return 0.5
	}
	return clamp((25-*rate)/15, 0, 1)
}

// MatchScore blends the applicant score with the product's rate into [0,1].
func MatchScore(applicantScore float64, p entity.LoanProduct) float64 {
	s := applicantScore/100*0.8 + RateAttractiveness(p.InterestRateValue)*0.2
	return round(clamp(s, 0, 1), 4)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

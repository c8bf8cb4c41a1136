package matching

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

// Eligible reports whether the applicant meets every criterion the product
// states. A criterion the product does not state never excludes. The second
// return value names the first failed criterion.
func Eligible(a entity.Applicant, p entity.LoanProduct) (bool, string) {
	if p.MinIncome != nil && a.MonthlyIncome < *p.MinIncome {
		return false, fmt.Sprintf("income %d below %d", a.MonthlyIncome, *p.MinIncome)
	}
	if p.MinCreditScore != nil && a.CreditScore < *p.MinCreditScore {
		return false, fmt.Sprintf("credit score %d below %d", a.CreditScore, *p.MinCreditScore)
	}
	if p.MinAge != nil && a.Age < *p.MinAge {
		return false, fmt.Sprintf("age %d below %d", a.Age, *p.MinAge)
	}
	return true, ""
}

// Reason is the explanation stored with a match.
func Reason(a entity.Applicant, p entity.LoanProduct) string {
	rate := "n/a"
	if p.InterestRate != nil {
		rate = *p.InterestRate
	}
	return fmt.Sprintf("Income: ₹%d, Credit Score: %d, Interest: %s", a.MonthlyIncome, a.CreditScore, rate)
}

// Match returns the applicant's matches among products, best first. Ties are
// ordered by product name.
func Match(a entity.Applicant, products []entity.LoanProduct, now time.Time) []entity.MatchView {
	score := Score(a)
	var out []entity.MatchView
	for _, p := range products {
		if ok, _ := Eligible(a, p); !ok {
			continue
		}
		out = append(out, entity.MatchView{
			Match: entity.Match{
				ID:          uuid.New(),
				UserID:      a.UserID,
				ProductID:   p.ID,
				MatchScore:  MatchScore(score, p),
				MatchReason: Reason(a, p),
				CreatedAt:   now.UTC(),
			},
			Product: p,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].Product.ProductName < out[j].Product.ProductName
	})
	return out
}

// Matches strips the product from each view for storage.
func Matches(views []entity.MatchView) []entity.Match {
	out := make([]entity.Match, 0, len(views))
	for _, v := range views {
		out = append(out, v.Match)
	}
	return out
}

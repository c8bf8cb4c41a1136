package offers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ScoreTier maps every rate up to and including MaxRate to a credit score band.
type ScoreTier struct {
	MaxRate float64
	Score   string
}

// CreditScoreTiers is checked in order; the first tier whose MaxRate is not
// below the rate wins.
var CreditScoreTiers = []ScoreTier{
	{MaxRate: 10, Score: "750+"},
	{MaxRate: 12, Score: "720+"},
	{MaxRate: 15, Score: "650+"},
	{MaxRate: 20, Score: "600+"},
}

// FallbackCreditScore applies to rates above every tier.
const FallbackCreditScore = "550+"

var reLeadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|\d+(?:\.\d*)?(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)

// CreditScore estimates the minimum credit score band from an interest rate
// string such as "10.85%". It returns nil when the rate is nil or does not start
// with a number.
func CreditScore(rate *string) *string {
	if rate == nil {
		return nil
	}
	v, ok := LeadingFloat(*rate)
	if !ok {
		return nil
	}
	score := FallbackCreditScore
	for _, t := range CreditScoreTiers {
		if v <= t.MaxRate {
			score = t.Score
			break
		}
	}
	return &score
}

// LeadingFloat parses the number at the start of s, ignoring leading space and
// anything after the number.
func LeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := reLeadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

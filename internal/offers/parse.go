package offers

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var reFigure = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// Unit multipliers for amount suffixes.
const (
	Lakh     = 100_000
	Thousand = 1_000
	Million  = 1_000_000
)

// RateValue parses "10.85%" into 10.85.
func RateValue(rate *string) *float64 {
	if rate == nil {
		return nil
	}
	v, ok := LeadingFloat(*rate)
	if !ok {
		return nil
	}
	return &v
}

// IncomeValue parses "₹25000" into 25000.
func IncomeValue(income *string) *int {
	if income == nil {
		return nil
	}
	digits := strings.TrimSpace(strings.TrimPrefix(*income, "₹"))
	v, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return nil
	}
	return &v
}

// ScoreFloor parses a band such as "720+" into 720.
func ScoreFloor(score *string) *int {
	if score == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(*score), "+"))
	if err != nil {
		return nil
	}
	return &v
}

// AgeValue parses "21 years" into 21.
func AgeValue(age string) *int {
	head, _, _ := strings.Cut(strings.TrimSpace(age), " ")
	v, err := strconv.Atoi(head)
	if err != nil {
		return nil
	}
	return &v
}

// AmountValue parses the first rupee figure of an amount, applying an L, K or M
// suffix: "up to ₹40L" is 4,000,000 and "₹1,00,000" is 100,000.
func AmountValue(amount *string) *float64 {
	if amount == nil {
		return nil
	}
	s := *amount
	if i := strings.Index(s, "₹"); i >= 0 {
		s = s[i+len("₹"):]
	}
	loc := reFigure.FindStringIndex(s)
	if loc == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s[loc[0]:loc[1]], ",", ""), 64)
	if err != nil {
		return nil
	}
	rest := strings.TrimLeftFunc(s[loc[1]:], unicode.IsSpace)
	r, _ := utf8.DecodeRuneInString(rest)
	switch unicode.ToUpper(r) {
	case 'L':
		v *= Lakh
	case 'K':
		v *= Thousand
	case 'M':
		v *= Million
	}
	return &v
}

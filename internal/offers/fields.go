package offers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Bounds is an inclusive plausibility range.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether v lies in [Min, Max].
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

var (
	// IncomeBounds limits accepted monthly income figures.
	IncomeBounds = Bounds{Min: 5000, Max: 500000}
	// AgeBounds limits accepted minimum ages.
	AgeBounds = Bounds{Min: 18, Max: 70}
)

// DefaultMinimumAge is emitted when no plausible age is stated.
const DefaultMinimumAge = "21 years"

// ws matches ASCII and Unicode space separators; rendered pages are full of NBSP.
const ws = `[\s\p{Zs}]`

var (
	reRate          = regexp.MustCompile(`\d+\.\d+%|\d+%`)
	reCeilingAmount = regexp.MustCompile(`(?i)up to.*?₹.*?[0-9,.]+[LKM]*`)
	reBareAmount    = regexp.MustCompile(`(?i)₹.*?[0-9,.]+[LKM]*`)
	reIncomeKeyword = regexp.MustCompile(`(?i)(?:minimum|net|monthly)?` + ws + `*(?:income|salary|earn)`)
	reIncomeFigure  = regexp.MustCompile(`(?i)(?:₹|Rs\.?)` + ws + `*([0-9,]+)`)
	reSpacedLakh    = regexp.MustCompile(`(?i)^` + ws + `*l`)
	reAge           = regexp.MustCompile(`(?i)(?:minimum age|age|at least)?` + ws + `*(\d+)` + ws + `*(?:years?|and|to)`)
)

// ExtractRate returns the first percentage in the context.
func ExtractRate(context string) *string {
	if m := reRate.FindString(context); m != "" {
		return &m
	}
	return nil
}

// ExtractAmount returns the loan ceiling. An "up to ... ₹..." phrase anywhere in
// the context wins over an earlier bare rupee figure.
func ExtractAmount(context string) *string {
	m := reCeilingAmount.FindString(context)
	if m == "" {
		m = reBareAmount.FindString(context)
	}
	if m = strings.TrimSpace(m); m == "" {
		return nil
	}
	return &m
}

// ExtractIncome returns the minimum income as "₹<digits>". The first rupee
// figure after an income keyword is judged; figures carrying a lakh, thousand or
// million suffix are loan amounts and are passed over.
func ExtractIncome(context string) *string {
	loc := reIncomeKeyword.FindStringIndex(context)
	if loc == nil {
		return nil
	}
	tail := context[loc[1]:]
	for _, m := range reIncomeFigure.FindAllStringSubmatchIndex(tail, -1) {
		if incomeUnitFollows(tail[m[3]:]) {
			continue
		}
		digits := strings.ReplaceAll(tail[m[2]:m[3]], ",", "")
		v, err := strconv.Atoi(digits)
		if err != nil || !IncomeBounds.Contains(v) {
			return nil
		}
		s := "₹" + digits
		return &s
	}
	return nil
}

// incomeUnitFollows reports a lakh suffix (spaces allowed) or a thousand or
// million suffix written directly after the digits.
func incomeUnitFollows(rest string) bool {
	if reSpacedLakh.MatchString(rest) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r == 'k' || r == 'K' || r == 'm' || r == 'M'
}

// ExtractAge returns the minimum age as "<n> years", or DefaultMinimumAge when
// the first age-like phrase is missing or implausible.
func ExtractAge(context string) string {
	offset := 0
	for offset < len(context) {
		m := reAge.FindStringSubmatchIndex(context[offset:])
		if m == nil {
			break
		}
		// "years" directly followed by a unit letter still reads as "year" + "s".
		unit := context[offset+m[0] : offset+m[1]]
		if unitLetterAt(context[offset+m[1]:]) && !hasSuffixFold(unit, "years") {
			_, size := utf8.DecodeRuneInString(context[offset+m[0]:])
			offset += m[0] + size
			continue
		}
		v, err := strconv.Atoi(context[offset+m[2] : offset+m[3]])
		if err != nil || !AgeBounds.Contains(v) {
			return DefaultMinimumAge
		}
		return fmt.Sprintf("%d years", v)
	}
	return DefaultMinimumAge
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func unitLetterAt(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	switch r {
	case 'l', 'L', 'k', 'K', 'm', 'M':
		return true
	}
	return false
}

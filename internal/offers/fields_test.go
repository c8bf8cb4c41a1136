package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRate(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"from 10.50% p.a. or 11%", ptr("10.50%")},
		{"rate 9% onwards", ptr("9%")},
		{"rate 1.5 % onwards", nil},
		{"no rate here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRate(tt.in))
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"ceiling wins over earlier figure", "income ₹25,000 and loans up to ₹40L", ptr("up to ₹40L")},
		{"bare figure", "loan of ₹1,00,000 available", ptr("₹1,00,000")},
		{"case insensitive ceiling", "Up To ₹ 5L today", ptr("Up To ₹ 5L")},
		{"none", "no figures", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAmount(tt.in))
		})
	}
}

func TestExtractIncome(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"monthly income", "monthly income ₹25,000", ptr("₹25000")},
		{"below range", "net salary Rs. 4,000", nil},
		{"upper bound", "minimum income Rs 500000", ptr("₹500000")},
		{"above range", "income ₹500001", nil},
		{"lower bound", "earn ₹5,000", ptr("₹5000")},
		{"lakh figure skipped", "salary ₹5 Lakh or ₹30,000", ptr("₹30000")},
		{"thousand suffix skipped", "income ₹25K, ₹20,000", ptr("₹20000")},
		{"suffixed figure passed over for a later one", "salary ₹50K cashback minimum income ₹25,000", ptr("₹25000")},
		{"spaced word after figure kept", "monthly income ₹25,000 monthly", ptr("₹25000")},
		{"figure before keyword", "Get ₹25,000 salary", nil},
		{"no keyword", "₹25,000", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIncome(tt.in))
		})
	}
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "age 21 years", "21 years"},
		{"at least", "at least 18 years old", "18 years"},
		{"above range", "minimum age 71 years", DefaultMinimumAge},
		{"empty", "", DefaultMinimumAge},
		{"range start judged", "2 to 5 years tenure", DefaultMinimumAge},
		{"unit letter skipped", "tenure 21 toLakh, age 23 years", "23 years"},
		{"unit letter after years", "age 25 yearsLoan", "25 years"},
		{"unit letter after year", "tenure 3 yearK, age 24 years", "24 years"},
		{"upper bound", "age 70 years", "70 years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAge(tt.in))
		})
	}
}

func TestBounds(t *testing.T) {
	assert.True(t, IncomeBounds.Contains(5000))
	assert.True(t, IncomeBounds.Contains(500000))
	assert.False(t, IncomeBounds.Contains(4999))
	assert.False(t, AgeBounds.Contains(71))
	assert.True(t, AgeBounds.Contains(18))
}

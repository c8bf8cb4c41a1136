package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// TableHeader is the fixed column order of the tabular output.
var TableHeader = []string{
	"product_name",
	"interest_rate",
	"minimum_income_required",
	"minimum_credit_score_needed",
	"amount",
	"minimum_age",
}

// NullCell stands in for a missing value.
const NullCell = "null"

var reLineBreak = regexp.MustCompile(`\r?\n|\r`)

// FormatCell renders one value: nil becomes "null", line breaks become spaces,
// and values containing a comma, quote or newline are quoted with inner quotes
// doubled.
func FormatCell(v *string) string {
	if v == nil {
		return NullCell
	}
	s := strings.TrimSpace(reLineBreak.ReplaceAllString(*v, " "))
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func tableRow(r offers.Record) []*string {
	name, age := r.ProductName, r.MinimumAge
	return []*string{
		&name,
		r.InterestRate,
		r.MinimumIncomeRequired,
		r.MinimumCreditScoreNeeded,
		r.LoanAmount,
		&age,
	}
}

// FormatTable renders the header and one row per record, joined by "\n" with no
// trailing newline.
func FormatTable(records []offers.Record) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(TableHeader, ","))
	for _, r := range records {
		row := tableRow(r)
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatCell(v)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteTable writes FormatTable(records) to w.
func WriteTable(w io.Writer, records []offers.Record) error {
	if _, err := io.WriteString(w, FormatTable(records)); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// ParseTable reads a table produced by FormatTable back into rows of cells,
// header included. Quoting is undone; "null" cells are returned as-is.
func ParseTable(s string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = len(TableHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	return rows, nil
}

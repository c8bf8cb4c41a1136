package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/entity"
)

// ApplicantColumns is the header an applicants CSV must carry, in any order.
var ApplicantColumns = []string{"user_id", "name", "email", "monthly_income", "credit_score", "employment_status", "age"}

// RowError describes a skipped CSV row. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  string
}

// ImportStats summarizes an applicants import.
type ImportStats struct {
	Rows     int
	Accepted int
	Skipped  []RowError
}

// LoadApplicants parses an applicants CSV. Rows that fail to parse or
// validate are skipped and reported in the stats; only a missing column or
// unreadable input is an error.
func LoadApplicants(r io.Reader) ([]entity.Applicant, ImportStats, error) {
	var stats ImportStats
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, common.NewAppError("INVALID_INPUT", "applicants CSV is empty", common.ErrInvalidInput)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range ApplicantColumns {
		if _, ok := cols[c]; !ok {
			return nil, stats, common.NewAppError("INVALID_INPUT", fmt.Sprintf("applicants CSV is missing column %q", c), common.ErrInvalidInput)
		}
	}

	var out []entity.Applicant
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				stats.Rows++
				stats.Skipped = append(stats.Skipped, RowError{Line: line, Err: err.Error()})
				continue
			}
			return out, stats, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}
		stats.Rows++

		a, err := parseApplicant(row, cols)
		if err != nil {
			stats.Skipped = append(stats.Skipped, RowError{Line: line, Err: err.Error()})
			continue
		}
		out = append(out, a)
	}
	stats.Accepted = len(out)
	return out, stats, nil
}

func parseApplicant(row []string, cols map[string]int) (entity.Applicant, error) {
	get := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	income, incomeErr := strconv.Atoi(strings.ReplaceAll(get("monthly_income"), ",", ""))
	score, scoreErr := strconv.Atoi(get("credit_score"))
	age, ageErr := strconv.Atoi(get("age"))
	if err := errors.Join(incomeErr, scoreErr, ageErr); err != nil {
		return entity.Applicant{}, common.NewAppError("VALIDATION_ERROR", "non-numeric value", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	a := entity.Applicant{
		UserID:           get("user_id"),
		Name:             get("name"),
		Email:            strings.ToLower(get("email")),
		MonthlyIncome:    income,
		CreditScore:      score,
		EmploymentStatus: strings.ToLower(get("employment_status")),
		Age:              age,
	}
	v := common.NewValidator().
		Field("user_id", a.UserID, common.Required, common.MaxLength(64)).
		Field("name", a.Name, common.Required, common.MaxLength(200)).
		Field("email", a.Email, common.Required, common.Email).
		Field("monthly_income", a.MonthlyIncome, common.IntRange(0, 100_000_000)).
		Field("credit_score", a.CreditScore, common.IntRange(300, 900)).
		Field("employment_status", a.EmploymentStatus, common.Required).
		Field("age", a.Age, common.IntRange(18, 100))
	if err := v.Error(); err != nil {
		return entity.Applicant{}, err
	}
	return a, nil
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

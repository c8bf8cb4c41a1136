package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// Service renders extraction results as JSON, CSV and XLSX artifacts.
type Service struct {
	schema map[string]any
	logger *slog.Logger
}

// Artifacts lists the files written for one collection.
type Artifacts struct {
	JSON string
	CSV  string
	XLSX string
}

func NewService(productNames []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{schema: BuildCollectionSchema(productNames), logger: logger}
}

// Document marshals the collection and validates it against the collection schema.
func (s *Service) Document(c offers.Collection) ([]byte, error) {
	data, err := MarshalCollection(c)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(s.schema, data); err != nil {
		s.logger.Error("export.json.invalid", "url", c.URL, "err", err)
		return nil, err
	}
	return data, nil
}

// XLSX returns a workbook (as bytes) with one row per record.
func (s *Service) XLSX(records []offers.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Lenders"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := []string{
		"Product",
		"Interest Rate",
		"Minimum Income",
		"Minimum Credit Score",
		"Loan Amount",
		"Minimum Age",
		"Context",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.ProductName)
		write(2, deref(r.InterestRate))
		write(3, deref(r.MinimumIncomeRequired))
		write(4, deref(r.MinimumCreditScoreNeeded))
		write(5, deref(r.LoanAmount))
		write(6, r.MinimumAge)
		write(7, r.RawText)
	}

	_ = f.SetColWidth(sheet, "A", "A", 36) // product
	_ = f.SetColWidth(sheet, "B", "F", 18)
	_ = f.SetColWidth(sheet, "G", "G", 80) // context

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteArtifacts writes the JSON document, the CSV table and the workbook into dir.
func (s *Service) WriteArtifacts(dir string, c offers.Collection) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir: %w", err)
	}
	doc, err := s.Document(c)
	if err != nil {
		return Artifacts{}, err
	}
	book, err := s.XLSX(c.Lenders)
	if err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{
		JSON: filepath.Join(dir, constants.ArtifactJSON),
		CSV:  filepath.Join(dir, constants.ArtifactCSV),
		XLSX: filepath.Join(dir, constants.ArtifactXLSX),
	}
	files := []struct {
		path string
		data []byte
	}{
		{out.JSON, doc},
		{out.CSV, []byte(FormatTable(c.Lenders))},
		{out.XLSX, book},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
		}
	}
	s.logger.Info("export.artifacts.ok", "dir", dir, "lenders", c.LenderCount)
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

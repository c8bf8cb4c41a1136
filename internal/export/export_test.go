package export

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

func ptr(s string) *string { return &s }

func sampleRecords() []offers.Record {
	return []offers.Record{
		{
			ProductName:              `Foo "Prime" Loan`,
			InterestRate:             ptr("10.5%"),
			MinimumCreditScoreNeeded: ptr("750+"),
			LoanAmount:               ptr("₹1,00,000"),
			MinimumAge:               "21 years",
			RawText:                  "Foo \"Prime\" Loan 10.5% ₹1,00,000",
		},
		{
			ProductName: "Bar\r\nLender",
			LoanAmount:  ptr("up to\n₹40L"),
			MinimumAge:  "21 years",
			RawText:     "Bar Lender up to ₹40L",
		},
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "null", FormatCell(nil))
	assert.Equal(t, "padded", FormatCell(ptr("  padded\n")))
	assert.Equal(t, "a b", FormatCell(ptr("a\r\nb")))
	assert.Equal(t, "a b c", FormatCell(ptr("a\rb\nc")))
	assert.Equal(t, `"₹1,00,000"`, FormatCell(ptr("₹1,00,000")))
	assert.Equal(t, `"say ""hi"""`, FormatCell(ptr(`say "hi"`)))
}

func TestFormatTable(t *testing.T) {
	got := FormatTable(sampleRecords())
	want := strings.Join([]string{
		"product_name,interest_rate,minimum_income_required,minimum_credit_score_needed,amount,minimum_age",
		`"Foo ""Prime"" Loan",10.5%,null,750+,"₹1,00,000",21 years`,
		"Bar Lender,null,null,null,up to ₹40L,21 years",
	}, "\n")
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))

	assert.Equal(t, strings.Join(TableHeader, ","), FormatTable(nil))
}

func TestParseTable_RoundTrip(t *testing.T) {
	rows, err := ParseTable(FormatTable(sampleRecords()))
	require.NoError(t, err)

	want := [][]string{
		TableHeader,
		{`Foo "Prime" Loan`, "10.5%", "null", "750+", "₹1,00,000", "21 years"},
		{"Bar Lender", "null", "null", "null", "up to ₹40L", "21 years"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleRecords()[:1]))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n")+1)
}

func TestDocument(t *testing.T) {
	svc := NewService([]string{`Foo "Prime" Loan`, "Bar\r\nLender"}, nil)
	c := offers.NewCollection("https://example.test/loans", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), sampleRecords())

	data, err := svc.Document(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "https://example.test/loans", decoded["url"])
	assert.Equal(t, "2026-01-02T03:04:05Z", decoded["scrapedAt"])
	assert.EqualValues(t, 2, decoded["lenderCount"])
	lenders := decoded["lenders"].([]any)
	first := lenders[0].(map[string]any)
	assert.Nil(t, first["minimumIncomeRequired"])
	assert.Contains(t, string(data), `"loanAmount": "₹1,00,000"`)

	strict := NewService([]string{"Someone Else"}, nil)
	_, err = strict.Document(c)
	assert.Error(t, err)
}

func TestValidateDocument_CountMismatch(t *testing.T) {
	doc := []byte(`{"url":"u","scrapedAt":"2026-01-01T00:00:00Z","lenderCount":3,"lenders":[]}`)
	err := ValidateDocument(BuildCollectionSchema(nil), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lenderCount")

	bad := []byte(`{"url":"u","scrapedAt":"x","lenderCount":1,"lenders":[{"productName":"A"}]}`)
	assert.Error(t, ValidateDocument(BuildCollectionSchema(nil), bad))
}

func TestXLSX(t *testing.T) {
	svc := NewService(nil, nil)
	data, err := svc.XLSX(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Lenders")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Product", rows[0][0])
	assert.Equal(t, `Foo "Prime" Loan`, rows[1][0])
	assert.Equal(t, "₹1,00,000", rows[1][4])
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(nil, nil)
	c := offers.NewCollection("https://example.test/loans", time.Now(), sampleRecords())

	out, err := svc.WriteArtifacts(dir, c)
	require.NoError(t, err)

	for _, p := range []string{out.JSON, out.CSV, out.XLSX} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	csvData, err := os.ReadFile(out.CSV)
	require.NoError(t, err)
	assert.Equal(t, FormatTable(c.Lenders), string(csvData))
}

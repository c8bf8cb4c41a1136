package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

const listing = `Compare personal loans
HDFC Bank Personal Loan
Interest rate 10.50% p.a.
Loan amount up to ₹40L
Minimum income ₹25,000 per month
Age 21 years to 60 years`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("RENDER_MODE", "")
	t.Setenv("LOG_FILE", "")
	extractFormat, extractOut, extractURL, extractHTML = "json", "", "", false

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExtract_CSVFromStdin(t *testing.T) {
	out, err := execute(t, listing, "extract", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "product_name,interest_rate"))
	assert.True(t, strings.HasPrefix(lines[1], "HDFC Bank Personal Loan,10.50%,₹25000,720+,"), lines[1])
}

func TestExtract_JSONFromSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.html")
	html := "<html><body><h2>Tata Capital Personal Loan</h2><p>Rates from 11.99% p.a.</p><script>var x = 'HDFC Bank Personal Loan';</script></body></html>"
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	out, err := execute(t, "", "extract", path, "--url", "https://example.test/loans")
	require.NoError(t, err)

	var doc offers.Collection
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://example.test/loans", doc.URL)
	require.Equal(t, 1, doc.LenderCount)
	assert.Equal(t, "Tata Capital Personal Loan", doc.Lenders[0].ProductName)
	assert.Equal(t, "11.99%", *doc.Lenders[0].InterestRate)
}

func TestExtract_XLSXNeedsNoStdout(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := execute(t, listing, "extract", "--format", "xlsx", "--out", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExtract_UnknownFormat(t *testing.T) {
	_, err := execute(t, listing, "extract", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestRenderTable(t *testing.T) {
	rate := "10.50%"
	got := renderTable([]offers.Record{{ProductName: "HDFC Bank Personal Loan", InterestRate: &rate, MinimumAge: "21 years"}})
	assert.Contains(t, got, "HDFC Bank Personal Loan")
	assert.Contains(t, got, "10.50%")
	assert.Contains(t, got, "1 lenders")
	assert.NotContains(t, got, "LENDERS")
	assert.Contains(t, got, "╭")
}

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/export"
	"github.com/joseph-ayodele/loan-offers/internal/ingest"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
	"github.com/joseph-ayodele/loan-offers/internal/render"
)

var (
	extractFormat string
	extractOut    string
	extractURL    string
	extractHTML   bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "Output format: json, csv, table or xlsx.")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Write to this file instead of stdout (required for xlsx).")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Source URL recorded in the JSON document.")
	extractCmd.Flags().BoolVar(&extractHTML, "html", false, "Treat stdin as HTML.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [snapshot.(html|htm|txt)]",
	Short: "Extracts loan offers from a saved page snapshot, or from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageText, source, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if extractURL != "" {
			source = extractURL
		}

		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		ex, err := offers.NewExtractor(cat, cfg.Scrape.ExtractorOptions())
		if err != nil {
			return err
		}
		records, err := ex.Extract(pageText)
		if err != nil {
			return err
		}
		logger.Info("extract.ok", "source", source, "records", len(records))

		c := offers.NewCollection(source, time.Now(), records)
		svc := export.NewService(cat.Names(), logger)

		var out []byte
		switch strings.ToLower(extractFormat) {
		case "json":
			if out, err = svc.Document(c); err == nil {
				out = append(out, '\n')
			}
		case "csv":
			out = []byte(export.FormatTable(c.Lenders) + "\n")
		case "table":
			out = []byte(renderTable(c.Lenders) + "\n")
		case "xlsx":
			if extractOut == "" {
				extractOut = constants.ArtifactXLSX
			}
			out, err = svc.XLSX(c.Lenders)
		default:
			return fmt.Errorf("unknown format %q", extractFormat)
		}
		if err != nil {
			return err
		}

		if extractOut == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(extractOut, out, 0o644); err != nil {
			return err
		}
		logger.Info("extract.written", "path", extractOut, "bytes", len(out))
		return nil
	},
}

func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 1 && args[0] != "-" {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", "", err
		}
		s, err := ingest.ReadSnapshot(abs)
		return s, ingest.FileURL(abs), err
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", "", err
	}
	if extractHTML {
		s, err := render.VisibleText(string(data))
		return s, "stdin", err
	}
	return string(data), "stdin", nil
}

func renderTable(records []offers.Record) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Product", "Rate", "Min Income", "Credit Score", "Amount", "Min Age"})
	for i, r := range records {
		t.AppendRow(table.Row{
			i + 1,
			r.ProductName,
			nullable(r.InterestRate),
			nullable(r.MinimumIncomeRequired),
			nullable(r.MinimumCreditScoreNeeded),
			nullable(r.LoanAmount),
			r.MinimumAge,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d lenders", len(records))})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMax: 32, WidthMaxEnforcer: text.WrapSoft},
	})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t.Render()
}

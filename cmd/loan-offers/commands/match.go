package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/ingest"
	"github.com/joseph-ayodele/loan-offers/internal/matching"
)

var matchApplicants string

func init() {
	matchCmd.Flags().StringVarP(&matchApplicants, "applicants", "a", "", "CSV of applicants to import before matching. Without it the stored applicants are matched.")
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Matches applicants against the stored loan products.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var applicants []entity.Applicant
		if matchApplicants != "" {
			f, err := os.Open(matchApplicants)
			if err != nil {
				return err
			}
			var stats ingest.ImportStats
			applicants, stats, err = ingest.LoadApplicants(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			for _, rowErr := range stats.Skipped {
				logger.Warn("match.applicant.skipped", "line", rowErr.Line, "err", rowErr.Err)
			}
			logger.Info("match.applicants.loaded", "rows", stats.Rows, "accepted", stats.Accepted, "skipped", len(stats.Skipped))
		}

		st, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := matching.NewService(st.products, st.applicants, st.matches, logger)
		sum, err := svc.Run(ctx, applicants)
		if err != nil {
			return err
		}

		users := make([]string, 0, len(sum.ByUser))
		for u := range sum.ByUser {
			users = append(users, u)
		}
		sort.Strings(users)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"User", "Product", "Score", "Reason"})
		for _, u := range users {
			for _, v := range sum.ByUser[u] {
				t.AppendRow(table.Row{u, v.Product.ProductName, fmt.Sprintf("%.2f", v.MatchScore), v.MatchReason})
			}
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d applicants", sum.Applicants),
			fmt.Sprintf("%d products", sum.Products),
			fmt.Sprintf("%d matches", sum.Matches),
			"",
		})
		t.SetStyle(table.StyleRounded)
		t.Style().Format.Footer = text.FormatDefault
		t.Render()
		return nil
	},
}

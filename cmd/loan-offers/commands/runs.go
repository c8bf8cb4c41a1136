package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to show.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Lists the most recent extraction runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.runs.ListRecent(ctx, runsLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Run", "Status", "Lenders", "Started", "Took", "Source", "Error"})
		for _, r := range runs {
			took := "-"
			if r.FinishedAt != nil {
				took = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
			}
			t.AppendRow(table.Row{
				r.ID.String()[:8],
				r.Status,
				r.RecordCount,
				r.StartedAt.Local().Format(time.DateTime),
				took,
				r.SourceURL,
				nullable(r.ErrorMessage),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

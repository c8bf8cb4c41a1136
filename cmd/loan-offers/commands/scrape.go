package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scrapeOutDir  string
	scrapeNoStore bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutDir, "out-dir", "o", "", "Directory for the JSON, CSV and XLSX artifacts (default OUTPUT_DIR).")
	scrapeCmd.Flags().BoolVar(&scrapeNoStore, "no-store", false, "Do not write the run or its products to the database.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Renders a lender listing page, extracts its offers and writes the artifacts.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := cfg.Scrape.URL
		if len(args) == 1 {
			url = args[0]
		}
		dir := cfg.Output.Dir
		if scrapeOutDir != "" {
			dir = scrapeOutDir
		}

		var st *store
		if !scrapeNoStore {
			var err error
			if st, err = openStore(ctx, false); err != nil {
				return err
			}
			defer st.Close()
		}

		r, closeRenderer, err := newRenderer(ctx)
		if err != nil {
			return err
		}
		defer closeRenderer()

		proc, err := newProcessor(st, r, dir)
		if err != nil {
			return err
		}
		res, err := proc.Run(ctx, url)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s: %d lenders from %s\n", res.RunID, res.Collection.LenderCount, url)
		if st != nil {
			fmt.Fprintf(out, "stored %d products\n", res.Stored)
		}
		for _, p := range []string{res.Artifacts.JSON, res.Artifacts.CSV, res.Artifacts.XLSX} {
			if p != "" {
				fmt.Fprintf(out, "wrote %s\n", p)
			}
		}
		return nil
	},
}

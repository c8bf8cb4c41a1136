package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

var dbhealthTimeout time.Duration

func init() {
	dbhealthCmd.Flags().DurationVar(&dbhealthTimeout, "timeout", time.Second, "Ping timeout.")
	rootCmd.AddCommand(dbhealthCmd)
}

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Pings the database, applies migrations and prints what is stored.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := repository.HealthCheck(ctx, st.drv, st.pool, dbhealthTimeout, logger); err != nil {
			return fmt.Errorf("DB health: FAIL (%w)", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "DB health: OK (%s)\n", cfg.Database.Driver)

		products, err := st.products.List(ctx)
		if err != nil {
			return err
		}
		applicants, err := st.applicants.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "products: %d\napplicants: %d\n", len(products), len(applicants))
		for _, p := range products {
			fmt.Fprintf(out, "- %s (%s)\n", p.ProductName, nullable(p.InterestRate))
		}
		return nil
	},
}

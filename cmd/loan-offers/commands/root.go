package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/logging"
)

var (
	cfg       *common.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "loan-offers",
	Short:         "loan-offers extracts personal loan offers from lender listing pages and matches them to applicants.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = common.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		// Logs go to stderr so command output on stdout stays clean.
		logger, logCloser = logging.New(cfg.Log, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

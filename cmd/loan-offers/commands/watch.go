package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/internal/async"
	"github.com/joseph-ayodele/loan-offers/internal/ingest"
	"github.com/joseph-ayodele/loan-offers/internal/pipeline"
)

var (
	watchDebounce   time.Duration
	watchNoInitial  bool
	watchShowHidden bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Wait this long after the last write before extracting a file.")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial-scan", false, "Ignore snapshots already in the directory.")
	watchCmd.Flags().BoolVar(&watchShowHidden, "hidden", false, "Include hidden files and directories.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watches a directory for saved listing snapshots and extracts each one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir := cfg.Scrape.WatchDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return errors.New("no directory given and WATCH_DIR is not set")
		}

		st, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close()

		proc, err := newProcessor(st, nil, cfg.Output.Dir)
		if err != nil {
			return err
		}
		q := async.NewQueue(proc, logger,
			async.WithWorkers(cfg.Worker.Workers),
			async.WithQueueSize(cfg.Worker.QueueSize),
			async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
			async.WithOnDone(func(job async.Job, res pipeline.Result, err error) {
				if err == nil {
					logger.Info("watch.extracted", "path", job.SourcePath, "lenders", res.Collection.LenderCount, "run_id", res.RunID)
				}
			}),
		)
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			q.Shutdown(sctx)
		}()

		logger.Info("watch.start", "dir", dir)
		err = ingest.Watch(ctx, ingest.WatchConfig{
			Roots:       []string{dir},
			InitialScan: !watchNoInitial,
			Debounce:    watchDebounce,
			SkipHidden:  !watchShowHidden,
			Logger:      logger,
		}, ingest.NewSnapshotIngestor(q, logger))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

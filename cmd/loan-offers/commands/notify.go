package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/loan-offers/internal/notify"
)

var notifyDryRun bool

func init() {
	notifyCmd.Flags().BoolVar(&notifyDryRun, "dry-run", false, "Compose the emails and print them without sending.")
	rootCmd.AddCommand(notifyCmd)
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Emails applicants the matches they have not been told about yet.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var sender notify.Sender
		if !notifyDryRun {
			if err := cfg.ValidateSMTP(); err != nil {
				return err
			}
			sender = notify.NewSMTPSender(cfg.SMTP)
		}

		st, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := notify.NewNotifier(st.applicants, st.matches, sender, logger).NotifyAll(ctx, notifyDryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if notifyDryRun {
			for _, m := range rep.Messages {
				fmt.Fprintf(out, "To: %s\nSubject: %s\n\n%s\n\n", m.To, m.Subject, m.Text)
			}
		}
		fmt.Fprintf(out, "composed %d, sent %d, failed %d, nothing pending for %d\n",
			len(rep.Messages), rep.Sent, rep.Failed, rep.Skipped)
		if rep.Failed > 0 {
			return fmt.Errorf("%d notifications failed", rep.Failed)
		}
		return nil
	},
}

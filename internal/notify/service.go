package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

// Notifier emails every applicant their pending matches once.
type Notifier struct {
	applicants repository.ApplicantRepository
	matches    repository.MatchRepository
	sender     Sender
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotifier(applicants repository.ApplicantRepository, matches repository.MatchRepository, sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{applicants: applicants, matches: matches, sender: sender, logger: logger, now: time.Now}
}

// Report summarizes a notification pass. Messages holds what was composed,
// whether or not it was sent.
type Report struct {
	Sent     int
	Skipped  int
	Failed   int
	Messages []Message
}

// NotifyAll composes an email per applicant with pending matches. Unless
// dryRun is set each message is sent and its matches marked notified; a
// failed send leaves them pending for the next pass.
func (n *Notifier) NotifyAll(ctx context.Context, dryRun bool) (Report, error) {
	applicants, err := n.applicants.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list applicants: %w", err)
	}

	var rep Report
	for _, a := range applicants {
		views, err := n.matches.ListForApplicant(ctx, a.UserID, true)
		if err != nil {
			return rep, fmt.Errorf("list matches for %s: %w", a.UserID, err)
		}
		if len(views) == 0 {
			rep.Skipped++
			continue
		}
		msg, err := Compose(a, views)
		if err != nil {
			return rep, err
		}
		rep.Messages = append(rep.Messages, msg)
		if dryRun {
			continue
		}

		if err := n.sender.Send(ctx, msg); err != nil {
			rep.Failed++
			n.logger.Error("notify.send.failed", "user_id", a.UserID, "err", err)
			continue
		}
		if err := n.matches.MarkNotified(ctx, matchIDs(views), n.now()); err != nil {
			return rep, fmt.Errorf("mark notified for %s: %w", a.UserID, err)
		}
		rep.Sent++
		n.logger.Info("notify.send.ok", "user_id", a.UserID, "matches", len(views))
	}
	n.logger.Info("notify.ok", "sent", rep.Sent, "skipped", rep.Skipped, "failed", rep.Failed, "dry_run", dryRun)
	return rep, nil
}

func matchIDs(views []entity.MatchView) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

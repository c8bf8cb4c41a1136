package matching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/loan-offers/internal/entity"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

// Service matches applicants against the stored catalog and keeps the
// matches table current.
type Service struct {
	products   repository.ProductRepository
	applicants repository.ApplicantRepository
	matches    repository.MatchRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(products repository.ProductRepository, applicants repository.ApplicantRepository, matches repository.MatchRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{products: products, applicants: applicants, matches: matches, logger: logger, now: time.Now}
}

// Summary reports one matching pass.
type Summary struct {
	Applicants int
	Products   int
	Matches    int
	ByUser     map[string][]entity.MatchView
}

// Run stores the given applicants, or every stored applicant when none are
// given, and replaces their matches.
func (s *Service) Run(ctx context.Context, applicants []entity.Applicant) (Summary, error) {
	if len(applicants) > 0 {
		if _, err := s.applicants.Upsert(ctx, applicants); err != nil {
			return Summary{}, fmt.Errorf("store applicants: %w", err)
		}
	} else {
		var err error
		if applicants, err = s.applicants.List(ctx); err != nil {
			return Summary{}, fmt.Errorf("list applicants: %w", err)
		}
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list products: %w", err)
	}

	sum := Summary{Applicants: len(applicants), Products: len(products), ByUser: map[string][]entity.MatchView{}}
	now := s.now()
	for _, a := range applicants {
		views := Match(a, products, now)
		if err := s.matches.Replace(ctx, a.UserID, Matches(views)); err != nil {
			return sum, fmt.Errorf("store matches for %s: %w", a.UserID, err)
		}
		sum.ByUser[a.UserID] = views
		sum.Matches += len(views)
		s.logger.Debug("matching.applicant.ok", "user_id", a.UserID, "score", Score(a), "matches", len(views))
	}
	s.logger.Info("matching.ok", "applicants", sum.Applicants, "products", sum.Products, "matches", sum.Matches)
	return sum, nil
}

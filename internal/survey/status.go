package survey

import (
	"context"

	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/preflight"
)

// StatusReport summarizes the requester account.
type StatusReport struct {
	Sandbox        bool
	Active         []marketplace.HIT
	Reviewable     []marketplace.HIT
	Qualifications []marketplace.Qualification
}

// Status lists active HITs, HITs awaiting review and owned qualification types.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	report := StatusReport{Sandbox: s.cfg.MTurk.Sandbox}
	if err := s.requireMarket("status"); err != nil {
		return report, err
	}
	report.Sandbox = s.market.Sandbox()
	var err error
	if report.Active, err = s.market.ListHITs(ctx); err != nil {
		return report, Wrap(ErrExternal, "status", "list hits", "", err)
	}
	if report.Reviewable, err = s.market.ListReviewableHITs(ctx); err != nil {
		return report, Wrap(ErrExternal, "status", "list reviewable hits", "", err)
	}
	if report.Qualifications, err = s.market.ListQualifications(ctx); err != nil {
		return report, Wrap(ErrExternal, "status", "list qualification types", "", err)
	}
	return report, nil
}

// Preflight runs the readiness checks, including a balance query when a
// marketplace client is configured.
func (s *Service) Preflight(ctx context.Context) []preflight.Result {
	var market preflight.Balancer
	if s.market != nil {
		market = s.market
	}
	return preflight.RunAll(ctx, s.cfg, market)
}

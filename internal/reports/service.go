package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

// Service handles field officer report business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns reports matching the filters.
func (s *Service) List(ctx context.Context, filters Filters) ([]FieldOfficerReport, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one report by ID.
func (s *Service) Get(ctx context.Context, id int64) (FieldOfficerReport, error) {
	if id <= 0 {
		return FieldOfficerReport{}, fmt.Errorf("%w: invalid report ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Submit aggregates the day's group visits and persists the report. The row
// is only written after every total has been computed, so a failure anywhere
// leaves nothing behind. Both the form and the offline sync path land here.
func (s *Service) Submit(ctx context.Context, reportDate time.Time, poName string, visits []GroupVisit) (FieldOfficerReport, error) {
	if poName == "" {
		return FieldOfficerReport{}, fmt.Errorf("%w: officer name required", httpx.ErrValidation)
	}
	if len(visits) == 0 {
		return FieldOfficerReport{}, fmt.Errorf("%w: at least one group visit required", httpx.ErrValidation)
	}
	if reportDate.IsZero() {
		reportDate = s.now()
	}
	return s.repo.Create(ctx, Aggregate(reportDate, poName, visits))
}

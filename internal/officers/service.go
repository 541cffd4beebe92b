package officers

import (
	"context"
	"fmt"
	"time"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Service handles field officer business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns officers matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]FieldOfficer, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one officer by ID.
func (s *Service) Get(ctx context.Context, id int64) (FieldOfficer, error) {
	if id <= 0 {
		return FieldOfficer{}, fmt.Errorf("%w: invalid officer ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Register creates a new field officer.
func (s *Service) Register(ctx context.Context, officer FieldOfficer) (FieldOfficer, error) {
	if officer.FirstName == "" || officer.LastName == "" {
		return FieldOfficer{}, fmt.Errorf("%w: officer name required", httpx.ErrValidation)
	}
	if officer.IDNumber == "" {
		return FieldOfficer{}, fmt.Errorf("%w: national ID number required", httpx.ErrValidation)
	}
	if officer.DateJoined.IsZero() {
		officer.DateJoined = time.Now()
	}
	officer.IsActive = true
	return s.repo.Create(ctx, officer)
}

// Update modifies an existing officer.
func (s *Service) Update(ctx context.Context, id int64, officer FieldOfficer) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid officer ID", httpx.ErrValidation)
	}
	if officer.FirstName == "" || officer.LastName == "" {
		return fmt.Errorf("%w: officer name required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, officer)
}

// Deactivate retires an officer without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid officer ID", httpx.ErrValidation)
	}
	return s.repo.Deactivate(ctx, id)
}

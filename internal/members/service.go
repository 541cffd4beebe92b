package members

import (
	"context"
	"fmt"
	"time"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// MinimumAge is the youngest a member may be at registration.
const MinimumAge = 18

// Service handles member business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns members matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one member by ID.
func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	if id <= 0 {
		return Member{}, fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Register validates and creates a new member. Nothing is persisted when
// validation fails.
func (s *Service) Register(ctx context.Context, member Member) (Member, error) {
	if err := s.validate(member); err != nil {
		return Member{}, err
	}
	if member.RegistrationDate.IsZero() {
		member.RegistrationDate = s.now()
	}
	member.IsActive = true
	return s.repo.Create(ctx, member)
}

// Update modifies an existing member.
func (s *Service) Update(ctx context.Context, id int64, member Member) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	if err := s.validate(member); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, member)
}

// Deactivate marks a member inactive, keeping their ledger history intact.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) validate(member Member) error {
	if member.FirstName == "" || member.LastName == "" {
		return fmt.Errorf("%w: member name required", httpx.ErrValidation)
	}
	if member.IDNumber == "" {
		return fmt.Errorf("%w: national ID number required", httpx.ErrValidation)
	}
	if !member.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender code %q", httpx.ErrValidation, member.Gender)
	}
	if member.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date of birth required", httpx.ErrValidation)
	}
	if age := member.AgeAt(s.now()); age < MinimumAge {
		return fmt.Errorf("%w: member must be at least %d years old, got %d", httpx.ErrValidation, MinimumAge, age)
	}
	return nil
}

package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Service handles group business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns groups matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one group by ID.
func (s *Service) Get(ctx context.Context, id int64) (Group, error) {
	if id <= 0 {
		return Group{}, fmt.Errorf("%w: invalid group ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Register creates a new group.
func (s *Service) Register(ctx context.Context, group Group) (Group, error) {
	if group.Name == "" {
		return Group{}, fmt.Errorf("%w: group name required", httpx.ErrValidation)
	}
	if group.RegistrationNumber == "" {
		return Group{}, fmt.Errorf("%w: registration number required", httpx.ErrValidation)
	}
	if group.FormationDate.IsZero() {
		group.FormationDate = time.Now()
	}
	group.IsActive = true
	return s.repo.Create(ctx, group)
}

// Update modifies an existing group.
func (s *Service) Update(ctx context.Context, id int64, group Group) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid group ID", httpx.ErrValidation)
	}
	if group.Name == "" {
		return fmt.Errorf("%w: group name required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, group)
}

// Deactivate marks a group inactive.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid group ID", httpx.ErrValidation)
	}
	return s.repo.Deactivate(ctx, id)
}

// Members returns the group's membership roll ordered by member number.
func (s *Service) Members(ctx context.Context, groupID int64) ([]Membership, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: invalid group ID", httpx.ErrValidation)
	}
	return s.repo.ListMemberships(ctx, groupID)
}

// Enroll adds a member to a group. When MemberNumber is zero the repository
// assigns the next sequential number within the group.
func (s *Service) Enroll(ctx context.Context, membership Membership) (Membership, error) {
	if membership.MemberID <= 0 || membership.GroupID <= 0 {
		return Membership{}, fmt.Errorf("%w: member and group required", httpx.ErrValidation)
	}
	if membership.Position == "" {
		membership.Position = PositionMember
	}
	if !membership.Position.Valid() {
		return Membership{}, fmt.Errorf("%w: unknown position %q", httpx.ErrValidation, membership.Position)
	}
	if membership.MemberNumber < 0 {
		return Membership{}, fmt.Errorf("%w: member number cannot be negative", httpx.ErrValidation)
	}
	if membership.JoinDate.IsZero() {
		membership.JoinDate = time.Now()
	}
	return s.repo.Enroll(ctx, membership)
}

// Exit records a member leaving a group.
func (s *Service) Exit(ctx context.Context, membershipID int64, reason string) error {
	if membershipID <= 0 {
		return fmt.Errorf("%w: invalid membership ID", httpx.ErrValidation)
	}
	return s.repo.Exit(ctx, membershipID, reason)
}

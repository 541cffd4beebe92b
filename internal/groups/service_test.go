package groups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

type memoryGroupRepo struct {
	groups           map[int64]*Group
	memberships      map[int64]*Membership
	nextGroupID      int64
	nextMembershipID int64
}

func newMemoryGroupRepo() *memoryGroupRepo {
	return &memoryGroupRepo{
		groups:      make(map[int64]*Group),
		memberships: make(map[int64]*Membership),
	}
}

func (r *memoryGroupRepo) List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error) {
	var out []Group
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (r *memoryGroupRepo) Get(ctx context.Context, id int64) (Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return Group{}, httpx.ErrNotFound
	}
	return *g, nil
}

func (r *memoryGroupRepo) Create(ctx context.Context, group Group) (Group, error) {
	r.nextGroupID++
	group.ID = r.nextGroupID
	r.groups[group.ID] = &group
	return group, nil
}

func (r *memoryGroupRepo) Update(ctx context.Context, id int64, group Group) error {
	if _, ok := r.groups[id]; !ok {
		return httpx.ErrNotFound
	}
	group.ID = id
	r.groups[id] = &group
	return nil
}

func (r *memoryGroupRepo) Deactivate(ctx context.Context, id int64) error {
	g, ok := r.groups[id]
	if !ok {
		return httpx.ErrNotFound
	}
	g.IsActive = false
	return nil
}

func (r *memoryGroupRepo) ListMemberships(ctx context.Context, groupID int64) ([]Membership, error) {
	var out []Membership
	for _, m := range r.memberships {
		if m.GroupID == groupID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memoryGroupRepo) Enroll(ctx context.Context, membership Membership) (Membership, error) {
	if _, ok := r.groups[membership.GroupID]; !ok {
		return Membership{}, httpx.ErrNotFound
	}
	if membership.MemberNumber == 0 {
		max := 0
		for _, m := range r.memberships {
			if m.GroupID == membership.GroupID && m.MemberNumber > max {
				max = m.MemberNumber
			}
		}
		membership.MemberNumber = max + 1
	}
	r.nextMembershipID++
	membership.ID = r.nextMembershipID
	membership.IsActive = true
	r.memberships[membership.ID] = &membership
	return membership, nil
}

func (r *memoryGroupRepo) Exit(ctx context.Context, membershipID int64, exitReason string) error {
	m, ok := r.memberships[membershipID]
	if !ok || !m.IsActive {
		return httpx.ErrNotFound
	}
	now := time.Now()
	m.IsActive = false
	m.ExitDate = &now
	m.ExitReason = exitReason
	return nil
}

func registeredGroup(t *testing.T, svc *Service) Group {
	t.Helper()
	g, err := svc.Register(context.Background(), Group{
		Name:               "Umoja Savings",
		RegistrationNumber: "UWG-001",
	})
	require.NoError(t, err)
	return g
}

func TestRegisterGroup(t *testing.T) {
	svc := NewService(newMemoryGroupRepo())
	g := registeredGroup(t, svc)
	require.NotZero(t, g.ID)
	require.True(t, g.IsActive)
	require.False(t, g.FormationDate.IsZero())
}

func TestRegisterGroupRequiresRegistrationNumber(t *testing.T) {
	svc := NewService(newMemoryGroupRepo())
	_, err := svc.Register(context.Background(), Group{Name: "Umoja Savings"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestEnrollAssignsSequentialMemberNumbers(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryGroupRepo())
	g := registeredGroup(t, svc)

	for want := 1; want <= 3; want++ {
		m, err := svc.Enroll(ctx, Membership{MemberID: int64(want), GroupID: g.ID})
		require.NoError(t, err)
		require.Equal(t, want, m.MemberNumber)
		require.Equal(t, PositionMember, m.Position)
		require.True(t, m.IsActive)
	}
}

func TestEnrollKeepsExplicitMemberNumber(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryGroupRepo())
	g := registeredGroup(t, svc)

	m, err := svc.Enroll(ctx, Membership{MemberID: 1, GroupID: g.ID, MemberNumber: 7})
	require.NoError(t, err)
	require.Equal(t, 7, m.MemberNumber)

	// Auto-numbering continues from the highest number, not the count.
	next, err := svc.Enroll(ctx, Membership{MemberID: 2, GroupID: g.ID})
	require.NoError(t, err)
	require.Equal(t, 8, next.MemberNumber)
}

func TestEnrollRejectsUnknownPosition(t *testing.T) {
	svc := NewService(newMemoryGroupRepo())
	g := registeredGroup(t, svc)

	_, err := svc.Enroll(context.Background(), Membership{MemberID: 1, GroupID: g.ID, Position: Position("BOSS")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestExitMembership(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryGroupRepo()
	svc := NewService(repo)
	g := registeredGroup(t, svc)

	m, err := svc.Enroll(ctx, Membership{MemberID: 1, GroupID: g.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Exit(ctx, m.ID, "relocated"))
	stored := repo.memberships[m.ID]
	require.False(t, stored.IsActive)
	require.NotNil(t, stored.ExitDate)

	// Exiting twice fails because the membership is no longer active.
	require.ErrorIs(t, svc.Exit(ctx, m.ID, "again"), httpx.ErrNotFound)
}

package members

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

type memoryMemberRepo struct {
	members map[int64]*Member
	nextID  int64
}

func newMemoryMemberRepo() *memoryMemberRepo {
	return &memoryMemberRepo{members: make(map[int64]*Member)}
}

func (r *memoryMemberRepo) List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error) {
	var out []Member
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out, len(out), nil
}

func (r *memoryMemberRepo) Get(ctx context.Context, id int64) (Member, error) {
	m, ok := r.members[id]
	if !ok {
		return Member{}, httpx.ErrNotFound
	}
	return *m, nil
}

func (r *memoryMemberRepo) Create(ctx context.Context, member Member) (Member, error) {
	r.nextID++
	member.ID = r.nextID
	r.members[member.ID] = &member
	return member, nil
}

func (r *memoryMemberRepo) Update(ctx context.Context, id int64, member Member) error {
	if _, ok := r.members[id]; !ok {
		return httpx.ErrNotFound
	}
	member.ID = id
	r.members[id] = &member
	return nil
}

func (r *memoryMemberRepo) Deactivate(ctx context.Context, id int64) error {
	m, ok := r.members[id]
	if !ok {
		return httpx.ErrNotFound
	}
	m.IsActive = false
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
}

func adultMember() Member {
	return Member{
		FirstName:   "Wanjiru",
		LastName:    "Kamau",
		IDNumber:    "29481736",
		Gender:      GenderFemale,
		DateOfBirth: time.Date(1990, 3, 2, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "+254700111222",
	}
}

func TestRegisterMember(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryMemberRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	created, err := svc.Register(ctx, adultMember())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.IsActive)
	require.False(t, created.RegistrationDate.IsZero())
}

func TestRegisterMemberRejectsUnderage(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryMemberRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	minor := adultMember()
	minor.DateOfBirth = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Register(ctx, minor)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.members, "nothing must be persisted on validation failure")
}

func TestRegisterMemberBirthdayBoundary(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryMemberRepo()
	svc := NewService(repo)
	svc.now = fixedNow

	// Turns 18 the day after "now": still 17.
	boundary := adultMember()
	boundary.DateOfBirth = time.Date(2008, 6, 16, 0, 0, 0, 0, time.UTC)
	_, err := svc.Register(ctx, boundary)
	require.ErrorIs(t, err, httpx.ErrValidation)

	// 18th birthday exactly on "now": allowed.
	boundary.DateOfBirth = time.Date(2008, 6, 15, 0, 0, 0, 0, time.UTC)
	_, err = svc.Register(ctx, boundary)
	require.NoError(t, err)
}

func TestRegisterMemberRejectsUnknownGender(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryMemberRepo())
	svc.now = fixedNow

	bad := adultMember()
	bad.Gender = Gender("X")
	_, err := svc.Register(ctx, bad)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAgeAt(t *testing.T) {
	m := Member{DateOfBirth: time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)}
	require.Equal(t, 23, m.AgeAt(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 24, m.AgeAt(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

package dashboard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	calls   int
	summary Summary
}

func (r *countingRepo) Summary(ctx context.Context) (Summary, error) {
	r.calls++
	s := r.summary
	s.GeneratedAt = time.Now()
	return s, nil
}

func newTestService(t *testing.T) (*Service, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &countingRepo{summary: Summary{
		TotalMembers:       120,
		TotalGroups:        8,
		ActiveLoans:        15,
		OutstandingBalance: decimal.RequireFromString("250000"),
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, client, logger, time.Minute), repo, mr
}

func TestSummaryCachesResult(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 120, first.TotalMembers)
	require.Equal(t, 1, repo.calls)

	// Second read comes from the cache.
	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, first.TotalMembers, second.TotalMembers)
	require.Equal(t, 1, repo.calls)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	_, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	repo.summary.TotalMembers = 121
	svc.Invalidate(ctx)

	updated, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 121, updated.TotalMembers)
	require.Equal(t, 2, repo.calls)
}

func TestSummaryExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	svc, repo, mr := newTestService(t)

	_, err := svc.Summary(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestWarmPrimesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	require.NoError(t, svc.Warm(ctx))
	require.Equal(t, 1, repo.calls)

	// The warmed value serves reads without touching the repository again.
	_, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
}

func TestSummaryDegradesWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	svc, repo, mr := newTestService(t)
	mr.Close()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 120, summary.TotalMembers)
	require.Equal(t, 1, repo.calls)
}

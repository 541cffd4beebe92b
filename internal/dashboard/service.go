package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service serves the summary through a redis cache. Keys are versioned: a
// ledger write bumps the version counter, which orphans every cached value
// written under the old version without touching it.
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
	ttl    time.Duration
	group  singleflight.Group
}

const versionKey = "dashboard:summary:version"

// NewService builds a Service instance.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// Summary returns the cached summary, computing it on a miss. Concurrent
// misses for the same version collapse into one database round trip.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cacheKey(ctx)
	if err != nil {
		// Cache trouble degrades to a direct read, it never fails the request.
		s.logger.Warn("dashboard cache unavailable", "error", err)
		return s.repo.Summary(ctx)
	}

	cached, err := s.cache.Get(ctx, key).Bytes()
	if err == nil {
		var summary Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return summary, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("dashboard cache read failed", "error", err)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		summary, err := s.repo.Summary(ctx)
		if err != nil {
			return Summary{}, err
		}
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", "error", err)
			}
		}
		return summary, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// Invalidate bumps the cache version. Called after ledger writes so the next
// read recomputes.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Incr(ctx, versionKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}

// Warm computes the summary and stores it under the current version. The
// nightly job calls this so the first morning request is already hot.
func (s *Service) Warm(ctx context.Context) error {
	key, err := s.cacheKey(ctx)
	if err != nil {
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	return nil
}

func (s *Service) cacheKey(ctx context.Context) (string, error) {
	version, err := s.cache.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("dashboard:summary:v%d", version), nil
}

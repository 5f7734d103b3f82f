package tariff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tariffsvc/internal/adapters"

	"github.com/sirupsen/logrus"
)

const defaultCacheTTL = 5 * time.Minute

// cacheNamespace prefixes every list-query cache key; the sync job
// invalidates the whole namespace after swapping the active set.
const cacheNamespace = "tariffs:"

// cachePayload is the serialized form of one cached list response. It
// is written whole or not at all.
type cachePayload struct {
	Data     []View    `json:"data"`
	Total    int       `json:"total"`
	CachedAt time.Time `json:"cached_at"`
}

type Service struct {
	repo  adapters.TariffRepository
	cache adapters.CacheProvider
	ttl   time.Duration
}

// GetTariffByID looks a single record up by its store-assigned id.
func (s *Service) GetTariffByID(ctx context.Context, id int64) (*View, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toView(*t)
	return &view, nil
}

// GetTariffs serves a list query straight from the store, bypassing the
// cache entirely.
func (s *Service) GetTariffs(ctx context.Context, base string, limit, offset int) (*Page, error) {
	if err := ValidatePagination(limit, offset); err != nil {
		return nil, err
	}

	views, total, err := s.fetchPage(ctx, NormalizeBase(base), limit, offset)
	if err != nil {
		return nil, err
	}

	return &Page{Data: views, Total: total, Timestamp: time.Now().UTC()}, nil
}

// GetTariffsCached is the cache-aside path: cache hit returns the
// stored payload as-is (TTL untouched); a miss reads the store, writes
// exactly one cache entry and returns the fresh page. Cache trouble
// never fails the caller, store trouble always does.
func (s *Service) GetTariffsCached(ctx context.Context, base string, limit, offset int) (*Page, error) {
	if err := ValidatePagination(limit, offset); err != nil {
		return nil, err
	}
	base = NormalizeBase(base)
	key := cacheKey(base, limit, offset)

	if b, ok := s.cache.Get(ctx, key); ok {
		var payload cachePayload
		if err := json.Unmarshal(b, &payload); err != nil {
			// Corrupted entry: drop it and fall through to the store.
			logrus.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
			s.cache.Delete(ctx, key)
		} else {
			cachedAt := payload.CachedAt
			return &Page{
				Data:      payload.Data,
				Total:     payload.Total,
				Timestamp: time.Now().UTC(),
				FromCache: true,
				CachedAt:  &cachedAt,
			}, nil
		}
	}

	views, total, err := s.fetchPage(ctx, base, limit, offset)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if b, err := json.Marshal(cachePayload{Data: views, Total: total, CachedAt: now}); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to marshal cache payload, skipping write")
	} else {
		s.cache.Set(ctx, key, b, s.ttl)
	}

	return &Page{Data: views, Total: total, Timestamp: now}, nil
}

// fetchPage reads active records from the store. A filtered query loads
// the whole base-currency slice and paginates in memory; an unfiltered
// one uses the store's native pagination plus an independent count.
func (s *Service) fetchPage(ctx context.Context, base string, limit, offset int) ([]View, int, error) {
	if base != "" {
		tariffs, err := s.repo.GetActiveByBase(ctx, base)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load tariffs for base %q: %w", base, err)
		}
		total := len(tariffs)
		if offset >= total {
			return []View{}, total, nil
		}
		end := offset + limit
		if end > total {
			end = total
		}
		return toViews(tariffs[offset:end]), total, nil
	}

	tariffs, err := s.repo.GetActive(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load tariffs: %w", err)
	}
	total, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tariffs: %w", err)
	}
	return toViews(tariffs), total, nil
}

func cacheKey(base string, limit, offset int) string {
	if base == "" {
		return fmt.Sprintf("%sall:limit=%d:offset=%d", cacheNamespace, limit, offset)
	}
	return fmt.Sprintf("%sbase:%s:limit=%d:offset=%d", cacheNamespace, base, limit, offset)
}

func NewService(repo adapters.TariffRepository, cache adapters.CacheProvider, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

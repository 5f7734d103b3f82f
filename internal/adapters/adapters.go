package adapters

import (
	"context"
	"time"

	"tariffsvc/internal/domain"

	"github.com/shopspring/decimal"
)

// LatestRates is one Frankfurter response: rates from Base to every
// other supported currency, as of Date.
type LatestRates struct {
	Base  string
	Date  string
	Rates map[string]decimal.Decimal
}

type RatesClient interface {
	GetCurrencies(ctx context.Context) (map[string]string, error)
	GetLatestRates(ctx context.Context, base string) (*LatestRates, error)
}

type TariffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tariff, error)
	GetActive(ctx context.Context, limit, offset int) ([]domain.Tariff, error)
	GetActiveByBase(ctx context.Context, base string) ([]domain.Tariff, error)
	CountActive(ctx context.Context) (int, error)
	HasActiveForDate(ctx context.Context, date time.Time) (bool, error)
	// ReplaceActive deactivates every active record and inserts the new
	// set in a single transaction. Returns (deactivated, inserted).
	ReplaceActive(ctx context.Context, records []domain.Tariff) (int64, int64, error)
}

// SyncLocker serializes sync runs across processes. TryLock returns
// false when another run already holds the lock.
type SyncLocker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// CacheProvider is a volatile accelerator: implementations contain
// every backend failure (a get degrades to a miss, writes and deletes
// to no-ops) and never propagate it to callers.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tariff is one exchange-rate record for a currency pair. Superseded
// records stay in the store with IsActive=false.
type Tariff struct {
	ID             int64
	BaseCurrency   string
	TargetCurrency string
	Rate           decimal.Decimal
	EffectiveDate  time.Time // date only, UTC midnight
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// PairKey identifies a tariff within one effective date.
type PairKey struct {
	Base   string
	Target string
}

func (t Tariff) PairKey() PairKey {
	return PairKey{Base: t.BaseCurrency, Target: t.TargetCurrency}
}

// Today truncates now to a UTC calendar date, the granularity tariffs
// are versioned at.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

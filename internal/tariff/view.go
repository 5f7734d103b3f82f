package tariff

import (
	"time"

	"tariffsvc/internal/domain"

	"github.com/shopspring/decimal"
)

// View is the read-side shape of one tariff record.
type View struct {
	ID             int64           `json:"id"`
	BaseCurrency   string          `json:"base_currency"`
	TargetCurrency string          `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveDate  string          `json:"effective_date"`
}

// Page is one answer to a list query. CachedAt is set only when the
// page was served from cache.
type Page struct {
	Data      []View     `json:"data"`
	Total     int        `json:"total"`
	Timestamp time.Time  `json:"timestamp"`
	FromCache bool       `json:"from_cache"`
	CachedAt  *time.Time `json:"cached_at,omitempty"`
}

func toView(t domain.Tariff) View {
	return View{
		ID:             t.ID,
		BaseCurrency:   t.BaseCurrency,
		TargetCurrency: t.TargetCurrency,
		Rate:           t.Rate,
		EffectiveDate:  t.EffectiveDate.Format(time.DateOnly),
	}
}

func toViews(tariffs []domain.Tariff) []View {
	views := make([]View, 0, len(tariffs))
	for _, t := range tariffs {
		views = append(views, toView(t))
	}
	return views
}

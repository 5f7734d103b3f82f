package tariff

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"tariffsvc/internal/adapters"
	"tariffsvc/internal/domain"

	"github.com/sirupsen/logrus"
)

// RunSync executes one full tariff refresh: guard, lock, fetch the
// currency matrix from the rate source, swap the active set in the
// store, invalidate the cache. A per-currency fetch failure skips that
// currency only; a store failure aborts the run. The next scheduled run
// is the only retry.
func RunSync(
	ctx context.Context,
	execID string,
	repo adapters.TariffRepository,
	lock adapters.SyncLocker,
	client adapters.RatesClient,
	cache adapters.CacheProvider,
	fetchDelay time.Duration,
) error {
	today := domain.Today(time.Now())

	// STEP 1: idempotence guard. A completed run for today makes this
	// one a no-op.
	synced, err := repo.HasActiveForDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to check sync state: %w", err)
	}
	if synced {
		logrus.Infof("Tariffs already synced for %s, skipping; execID: %s", today.Format(time.DateOnly), execID)
		return nil
	}

	// STEP 2: the existence check above is only a guard, not a mutex;
	// the advisory lock serializes racing runs.
	locked, err := lock.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to take sync lock: %w", err)
	}
	if !locked {
		logrus.Infof("Another sync run holds the lock, skipping; execID: %s", execID)
		return nil
	}
	defer func() {
		if unlockErr := lock.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			logrus.WithError(unlockErr).Warnf("Failed to release sync lock; execID: %s", execID)
		}
	}()

	// STEP 3: currency list. Empty or unavailable aborts before any
	// mutation.
	currencies, err := client.GetCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch currency list: %w", err)
	}
	codes := sortedCodes(currencies)
	if len(codes) == 0 {
		return errors.New("currency list is empty, aborting run")
	}
	logrus.Infof("Fetching rates for %d currencies; execID: %s", len(codes), execID)

	// STEP 4: build the full matrix, one request per base currency.
	records, failed := fetchMatrix(ctx, client, codes, today, fetchDelay, execID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Cancelled mid-fetch: bail out before the write phase so the
		// store keeps its previous active set intact.
		return fmt.Errorf("sync run cancelled before write phase: %w", ctxErr)
	}
	if len(records) == 0 {
		return errors.New("no rates fetched, aborting run")
	}
	if failed > 0 {
		logrus.Warnf("%d of %d currencies failed and were skipped; execID: %s", failed, len(codes), execID)
	}

	// STEP 5: the rate source may report a pair twice; first wins.
	unique := dedupe(records)
	if dropped := len(records) - len(unique); dropped > 0 {
		logrus.Infof("Removed %d duplicate pairs; execID: %s", dropped, execID)
	}

	// STEP 6: swap the active set in one transaction.
	deactivated, inserted, err := repo.ReplaceActive(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to replace active tariffs: %w", err)
	}

	// STEP 7: stale pages must not outlive the swap.
	cache.DeleteByPrefix(context.WithoutCancel(ctx), cacheNamespace)

	logrus.Infof("Sync run complete for %s: deactivated %d, inserted %d; execID: %s",
		today.Format(time.DateOnly), deactivated, inserted, execID)
	return nil
}

// sortedCodes uppercases and orders the currency codes so a run always
// walks the rate source in a deterministic order.
func sortedCodes(currencies map[string]string) []string {
	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, strings.ToUpper(code))
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

func fetchMatrix(
	ctx context.Context,
	client adapters.RatesClient,
	codes []string,
	date time.Time,
	delay time.Duration,
	execID string,
) ([]domain.Tariff, int) {
	records := make([]domain.Tariff, 0, len(codes)*len(codes))
	failed := 0

	for i, base := range codes {
		if ctx.Err() != nil {
			return records, failed
		}

		latest, err := client.GetLatestRates(ctx, base)
		if err != nil {
			failed++
			logrus.Warnf("Skipping base %q, rates fetch failed: %v; execID: %s", base, err, execID)
			continue
		}

		for target, rate := range latest.Rates {
			records = append(records, domain.Tariff{
				BaseCurrency:   base,
				TargetCurrency: strings.ToUpper(target),
				Rate:           rate,
				EffectiveDate:  date,
				IsActive:       true,
			})
		}

		// Throttle between calls so the rate source is not hammered.
		if delay > 0 && i < len(codes)-1 {
			select {
			case <-ctx.Done():
				return records, failed
			case <-time.After(delay):
			}
		}
	}
	return records, failed
}

func dedupe(records []domain.Tariff) []domain.Tariff {
	seen := make(map[domain.PairKey]struct{}, len(records))
	unique := make([]domain.Tariff, 0, len(records))
	for _, t := range records {
		if _, ok := seen[t.PairKey()]; ok {
			continue
		}
		seen[t.PairKey()] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

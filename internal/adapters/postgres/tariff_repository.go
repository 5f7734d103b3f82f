package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tariffsvc/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TariffRepository struct {
	pool *pgxpool.Pool
}

const selectColumns = `id, base_currency, target_currency, rate, effective_date, is_active, created_at, updated_at`

// GetByID looks a record up by id regardless of its active flag, so
// superseded history rows stay addressable.
func (r *TariffRepository) GetByID(ctx context.Context, id int64) (*domain.Tariff, error) {
	const q = `select ` + selectColumns + ` from tariffs where id = $1;`

	var t domain.Tariff
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&t.ID,
		&t.BaseCurrency,
		&t.TargetCurrency,
		&t.Rate,
		&t.EffectiveDate,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, fmt.Errorf("failed to select tariff %d: %w", id, err)
	}
	return &t, nil
}

func (r *TariffRepository) GetActive(ctx context.Context, limit, offset int) ([]domain.Tariff, error) {
	const q = `
		select ` + selectColumns + `
		from tariffs
		where is_active
		order by base_currency, target_currency
		limit $1 offset $2;
	`

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tariffs: %w", err)
	}
	defer rows.Close()

	return scanTariffs(rows)
}

func (r *TariffRepository) GetActiveByBase(ctx context.Context, base string) ([]domain.Tariff, error) {
	const q = `
		select ` + selectColumns + `
		from tariffs
		where base_currency = $1 and is_active
		order by target_currency;
	`

	rows, err := r.pool.Query(ctx, q, base)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tariffs for base %q: %w", base, err)
	}
	defer rows.Close()

	return scanTariffs(rows)
}

func (r *TariffRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `select count(*) from tariffs where is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active tariffs: %w", err)
	}
	return count, nil
}

func (r *TariffRepository) HasActiveForDate(ctx context.Context, date time.Time) (bool, error) {
	const q = `select exists (select 1 from tariffs where effective_date = $1 and is_active);`

	var exists bool
	if err := r.pool.QueryRow(ctx, q, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active tariffs for date %s: %w", date.Format(time.DateOnly), err)
	}
	return exists, nil
}

// insertRow mirrors the json_to_recordset field list in ReplaceActive.
type insertRow struct {
	BaseCurrency   string          `json:"base_currency"`
	TargetCurrency string          `json:"target_currency"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveDate  string          `json:"effective_date"`
}

// ReplaceActive deactivates all currently-active records and inserts
// the new set as active rows, both in one transaction. Readers either
// see the old active set or the new one, never the half-state.
func (r *TariffRepository) ReplaceActive(ctx context.Context, records []domain.Tariff) (int64, int64, error) {
	rowsJSON, err := marshalInsertRows(records)
	if err != nil {
		return 0, 0, err
	}

	const deactivateQ = `update tariffs set is_active = false, updated_at = now() where is_active;`
	const insertQ = `
		with input_rows as (
		  select * from json_to_recordset($1::json)
		    as r(base_currency text, target_currency text, rate numeric, effective_date date)
		)
		insert into tariffs (base_currency, target_currency, rate, effective_date, is_active, created_at)
		select base_currency, target_currency, rate, effective_date, true, now()
		from input_rows;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deactivated, err := tx.Exec(ctx, deactivateQ)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to deactivate tariffs: %w", err)
	}

	inserted, err := tx.Exec(ctx, insertQ, json.RawMessage(rowsJSON))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert tariffs: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deactivated.RowsAffected(), inserted.RowsAffected(), nil
}

func marshalInsertRows(records []domain.Tariff) ([]byte, error) {
	rows := make([]insertRow, 0, len(records))
	for _, t := range records {
		rows = append(rows, insertRow{
			BaseCurrency:   t.BaseCurrency,
			TargetCurrency: t.TargetCurrency,
			Rate:           t.Rate,
			EffectiveDate:  t.EffectiveDate.Format(time.DateOnly),
		})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tariff rows: %w", err)
	}
	return b, nil
}

func scanTariffs(rows pgx.Rows) ([]domain.Tariff, error) {
	tariffs := make([]domain.Tariff, 0, 64)
	for rows.Next() {
		var t domain.Tariff
		if err := rows.Scan(
			&t.ID,
			&t.BaseCurrency,
			&t.TargetCurrency,
			&t.Rate,
			&t.EffectiveDate,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tariff: %w", err)
		}
		tariffs = append(tariffs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tariffs: %w", err)
	}
	return tariffs, nil
}

func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

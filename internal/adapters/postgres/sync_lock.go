package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// syncLockKey is an arbitrary application-wide advisory lock id for the
// tariff sync run.
const syncLockKey = int64(0x7461726966660001)

// SyncLock serializes sync runs across process replicas via a Postgres
// session advisory lock. The lock is tied to one pinned connection, so
// losing the connection releases it automatically.
type SyncLock struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	conn *pgxpool.Conn
}

func (l *SyncLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return false, nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire connection for sync lock: %w", err)
	}

	var locked bool
	if err = conn.QueryRow(ctx, `select pg_try_advisory_lock($1)`, syncLockKey).Scan(&locked); err != nil {
		conn.Release()
		return false, fmt.Errorf("failed to take sync advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

func (l *SyncLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	_, err := l.conn.Exec(ctx, `select pg_advisory_unlock($1)`, syncLockKey)
	l.conn.Release()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("failed to release sync advisory lock: %w", err)
	}
	return nil
}

func NewSyncLock(pool *pgxpool.Pool) *SyncLock {
	return &SyncLock{pool: pool}
}

package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Provider is a Redis-backed cache. Every backend failure is contained
// here: a failed get is a miss, a failed write or delete is a no-op.
// Callers can always treat the cache as present but possibly empty.
type Provider struct {
	rdb *redis.Client
}

// New connects to Redis and pings it. A ping failure is returned to the
// caller so startup can fall back to the no-op provider.
func New(ctx context.Context, addr, password string, db int) (*Provider, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Provider{rdb: rdb}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("Cache get failed, treating as miss")
		}
		return nil, false
	}
	return b, true
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache set failed, skipping")
	}
}

func (p *Provider) Delete(ctx context.Context, key string) {
	if err := p.rdb.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache delete failed, skipping")
	}
}

// DeleteByPrefix removes every key under prefix using SCAN, so a large
// keyspace is never blocked the way KEYS would.
func (p *Provider) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := p.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := p.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logrus.WithError(err).WithField("key", iter.Val()).Warn("Cache delete failed, skipping")
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		logrus.WithError(err).WithField("prefix", prefix).Warn("Cache scan failed, invalidation incomplete")
		return
	}
	logrus.Debugf("Invalidated %d cache entries under prefix %q", deleted, prefix)
}

func (p *Provider) Close() error { return p.rdb.Close() }

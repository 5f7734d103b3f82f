package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// An address nothing listens on; connection attempts fail fast.
const unreachableAddr = "127.0.0.1:1"

func TestNew_UnreachableBackendReturnsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, unreachableAddr, "", 0)
	require.Error(t, err, "startup needs the error to fall back to the no-op provider")
}

func TestProvider_ContainsBackendFailures(t *testing.T) {
	// A provider whose backend died after startup: every operation must
	// degrade silently instead of failing the caller.
	p := &Provider{rdb: redis.NewClient(&redis.Options{
		Addr:        unreachableAddr,
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}
	t.Cleanup(func() { _ = p.Close() })

	ctx := context.Background()

	b, ok := p.Get(ctx, "tariffs:all:limit=10:offset=0")
	require.False(t, ok, "backend failure must read as a miss")
	require.Nil(t, b)

	// Writes and deletes must be silent no-ops.
	p.Set(ctx, "tariffs:all:limit=10:offset=0", []byte("payload"), time.Minute)
	p.Delete(ctx, "tariffs:all:limit=10:offset=0")
	p.DeleteByPrefix(ctx, "tariffs:")
}

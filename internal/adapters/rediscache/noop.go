package rediscache

import (
	"context"
	"time"
)

// NoopProvider satisfies the cache contract with always-miss reads and
// discarded writes. It is the drop-in substitute used when Redis is
// unreachable at startup: every read degrades to a store hit, results
// stay correct.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NoopProvider) Set(context.Context, string, []byte, time.Duration) {}

func (NoopProvider) Delete(context.Context, string) {}

func (NoopProvider) DeleteByPrefix(context.Context, string) {}

func NewNoop() NoopProvider { return NoopProvider{} }

package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/metrics"
)

// Remote is a byte-level persistent or shared cache tier. A miss is reported
// as (nil, false, nil); errors are reserved for backend failures.
type Remote interface {
	GetCached(ctx context.Context, key string) ([]byte, bool, error)
	SetCached(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DeleteCached(ctx context.Context, key string) error
}

// Layered fronts a Remote tier with a Memory arena. Reads fall through to the
// remote on a local miss and repopulate the arena; writes go to both. Remote
// failures are logged and treated as misses.
type Layered[V any] struct {
	name   string
	local  *Memory[V]
	remote Remote
	ttl    time.Duration
}

// NewLayered creates a Layered cache. remote may be nil, in which case the
// cache behaves exactly like local.
func NewLayered[V any](name string, local *Memory[V], remote Remote, ttl time.Duration) *Layered[V] {
	return &Layered[V]{name: name, local: local, remote: remote, ttl: ttl}
}

// Get implements Cache.
func (l *Layered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := l.local.Get(ctx, key); ok {
		metrics.CacheRequests.WithLabelValues(l.name, "hit").Inc()
		return v, true
	}

	var zero V
	if l.remote == nil {
		metrics.CacheRequests.WithLabelValues(l.name, "miss").Inc()
		return zero, false
	}

	payload, ok, err := l.remote.GetCached(ctx, key)
	if err != nil {
		zap.L().Warn("cache: remote get failed",
			zap.String("cache", l.name),
			zap.String("key", ShortKey(key)),
			zap.Error(err),
		)
		metrics.CacheRequests.WithLabelValues(l.name, "error").Inc()
		return zero, false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues(l.name, "miss").Inc()
		return zero, false
	}

	var v V
	if err := json.Unmarshal(payload, &v); err != nil {
		zap.L().Warn("cache: discarding undecodable remote entry",
			zap.String("cache", l.name),
			zap.String("key", ShortKey(key)),
			zap.Error(err),
		)
		metrics.CacheRequests.WithLabelValues(l.name, "error").Inc()
		return zero, false
	}
	l.local.Set(ctx, key, v)
	metrics.CacheRequests.WithLabelValues(l.name, "remote_hit").Inc()
	return v, true
}

// Set implements Cache.
func (l *Layered[V]) Set(ctx context.Context, key string, value V) {
	l.local.Set(ctx, key, value)
	if l.remote == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("cache: encode failed", zap.String("cache", l.name), zap.Error(err))
		return
	}
	if err := l.remote.SetCached(ctx, key, payload, l.ttl); err != nil {
		zap.L().Warn("cache: remote set failed",
			zap.String("cache", l.name),
			zap.String("key", ShortKey(key)),
			zap.Error(err),
		)
	}
}

// Delete implements Cache.
func (l *Layered[V]) Delete(ctx context.Context, key string) {
	l.local.Delete(ctx, key)
	if l.remote == nil {
		return
	}
	if err := l.remote.DeleteCached(ctx, key); err != nil {
		zap.L().Warn("cache: remote delete failed",
			zap.String("cache", l.name),
			zap.String("key", ShortKey(key)),
			zap.Error(err),
		)
	}
}

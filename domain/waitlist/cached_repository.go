package waitlist

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/akeren/go-waitlist/internal/log"
	"github.com/akeren/go-waitlist/internal/models"
	"github.com/akeren/go-waitlist/pkg/circuitbreaker"
)

const (
	entriesCacheKey      = "waitlist:entries"
	entriesGenerationKey = "waitlist:entries:gen"
)

// entriesKey names the cached list for one generation. Writes bump the generation,
// so a list read before a write can only ever land under a key nobody reads again.
func entriesKey(generation int64) string {
	return entriesCacheKey + ":" + strconv.FormatInt(generation, 10)
}

// Cache is the subset of config.Cache the decorator needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type cachedWaitlistRepository struct {
	inner   WaitlistRepository
	cache   Cache
	ttl     time.Duration
	breaker circuitbreaker.CircuitBreaker
	logger  *log.Logger

	// pendingBump is set when a write could not bump the generation.
	// The cache is bypassed until a later bump succeeds.
	pendingBump atomic.Bool
}

// NewCachedWaitlistRepository serves ListAll from cache and moves to a fresh generation on every write.
// Cache failures are logged and never surface to callers.
func NewCachedWaitlistRepository(inner WaitlistRepository, cache Cache, ttl time.Duration, logger *log.Logger) WaitlistRepository {
	return &cachedWaitlistRepository{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 3,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 1,
			OnStateChange: func(from, to circuitbreaker.CircuitState) {
				logger.Warn("Waitlist cache breaker changed state", "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
	}
}

func (r *cachedWaitlistRepository) ListAll(ctx context.Context) ([]models.WaitlistEntry, error) {
	if !r.flushPendingBump(ctx) {
		return r.inner.ListAll(ctx)
	}

	// The generation is read before the store so a concurrent write moves readers past this snapshot.
	generation, ok := r.generation(ctx)
	if !ok {
		return r.inner.ListAll(ctx)
	}

	key := entriesKey(generation)
	if entries, ok := r.readCache(ctx, key); ok {
		return entries, nil
	}

	entries, err := r.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	r.writeCache(ctx, key, entries)
	return entries, nil
}

func (r *cachedWaitlistRepository) Insert(ctx context.Context, entry *models.WaitlistEntry) (int64, error) {
	rows, err := r.inner.Insert(ctx, entry)
	if err != nil {
		return rows, err
	}

	r.invalidate(ctx)
	return rows, nil
}

func (r *cachedWaitlistRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	rows, err := r.inner.DeleteByEmail(ctx, email)
	if err != nil {
		return rows, err
	}

	if rows > 0 {
		r.invalidate(ctx)
	}
	return rows, nil
}

func (r *cachedWaitlistRepository) generation(ctx context.Context) (int64, bool) {
	logger := log.GetLoggerInstanceFromContext(ctx, r.logger)

	var raw string
	err := r.breaker.Call(func() error {
		value, err := r.cache.Get(ctx, entriesGenerationKey)
		raw = value
		return err
	})
	if err != nil {
		logger.Warn("Waitlist cache generation read failed", "key", entriesGenerationKey, "error", err)
		return 0, false
	}

	if raw == "" {
		var generation int64
		if err := r.breaker.Call(func() error {
			value, err := r.cache.Incr(ctx, entriesGenerationKey)
			generation = value
			return err
		}); err != nil {
			logger.Warn("Waitlist cache generation init failed", "key", entriesGenerationKey, "error", err)
			return 0, false
		}
		return generation, true
	}

	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("Ignoring malformed waitlist cache generation", "key", entriesGenerationKey, "value", raw)
		return 0, false
	}
	return generation, true
}

func (r *cachedWaitlistRepository) readCache(ctx context.Context, key string) ([]models.WaitlistEntry, bool) {
	logger := log.GetLoggerInstanceFromContext(ctx, r.logger)

	var raw string
	err := r.breaker.Call(func() error {
		value, err := r.cache.Get(ctx, key)
		raw = value
		return err
	})
	if err != nil {
		logger.Warn("Waitlist cache read failed", "key", key, "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	var entries []models.WaitlistEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("Discarding undecodable waitlist cache entry", "key", key, "error", err)
		return nil, false
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}

	return entries, true
}

func (r *cachedWaitlistRepository) writeCache(ctx context.Context, key string, entries []models.WaitlistEntry) {
	logger := log.GetLoggerInstanceFromContext(ctx, r.logger)

	payload, err := json.Marshal(entries)
	if err != nil {
		logger.Warn("Failed to encode waitlist entries for cache", "error", err)
		return
	}

	if err := r.breaker.Call(func() error {
		return r.cache.Set(ctx, key, string(payload), r.ttl)
	}); err != nil {
		logger.Warn("Waitlist cache write failed", "key", key, "error", err)
	}
}

func (r *cachedWaitlistRepository) bumpGeneration(ctx context.Context) error {
	return r.breaker.Call(func() error {
		_, err := r.cache.Incr(ctx, entriesGenerationKey)
		return err
	})
}

func (r *cachedWaitlistRepository) invalidate(ctx context.Context) {
	if err := r.bumpGeneration(ctx); err != nil {
		r.pendingBump.Store(true)
		log.GetLoggerInstanceFromContext(ctx, r.logger).Warn("Waitlist cache invalidation failed; bypassing cache until it succeeds",
			"key", entriesGenerationKey, "error", err)
	}
}

// flushPendingBump retries a failed invalidation. It reports whether the cache may be used.
func (r *cachedWaitlistRepository) flushPendingBump(ctx context.Context) bool {
	if !r.pendingBump.CompareAndSwap(true, false) {
		return true
	}
	if err := r.bumpGeneration(ctx); err != nil {
		r.pendingBump.Store(true)
		return false
	}
	return true
}

// Package cache provides a Redis read-through cache in front of the job store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// ErrNotFound is returned by a Store for a missing key
var ErrNotFound = errors.New("key not found in cache")

// DefaultTTL is used when no TTL is configured
const DefaultTTL = 5 * time.Minute

const jobKeyPrefix = "matcher:job:"

// Store is the byte-level cache the job cache writes through
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements Store on a go-redis client
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(opts Options) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// JobSource is the store the cache reads through to
type JobSource interface {
	GetJob(ctx context.Context, id string) (*types.JobRecord, error)
}

// JobCache is a read-through cache for job records. Cache failures are logged and
// never fail a lookup; errors from the source are returned unchanged and not cached.
type JobCache struct {
	source JobSource
	store  Store
	ttl    time.Duration
	log    *zap.Logger
}

// NewJobCache wraps source with store
func NewJobCache(source JobSource, store Store, ttl time.Duration, log *zap.Logger) *JobCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JobCache{source: source, store: store, ttl: ttl, log: logger.OrNop(log)}
}

// GetJob returns the cached job or loads and caches it
func (c *JobCache) GetJob(ctx context.Context, id string) (*types.JobRecord, error) {
	key := jobKeyPrefix + id
	log := c.log.With(zap.String(logger.FieldJobID, id))

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var job types.JobRecord
		if jsonErr := json.Unmarshal(raw, &job); jsonErr == nil && job.ID != "" {
			metrics.JobCacheHits.Inc()
			return &job, nil
		}
		log.Warn("discarding undecodable cached job")
	case !errors.Is(err, ErrNotFound):
		log.Warn("job cache read failed", zap.Error(err))
	}
	metrics.JobCacheMisses.Inc()

	job, err := c.source.GetJob(ctx, id)
	if err != nil || job == nil {
		return job, err
	}

	if encoded, err := json.Marshal(job); err == nil {
		if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
			log.Warn("job cache write failed", zap.Error(err))
		}
	}
	return job, nil
}

// Invalidate drops a cached job
func (c *JobCache) Invalidate(ctx context.Context, id string) error {
	return c.store.Delete(ctx, jobKeyPrefix+id)
}

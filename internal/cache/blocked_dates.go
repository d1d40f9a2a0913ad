// Package cache keeps per-property blocked-date lists close to the read path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a cached list may outlive a missed invalidation.
const DefaultTTL = 10 * time.Minute

// BlockedDatesCache stores the computed blocked dates of a property.
//
// Every Invalidate bumps the property's generation. Readers take the generation before loading
// from the store and pass it to Set, which drops the write if an invalidation happened meanwhile.
type BlockedDatesCache interface {
	// Get returns the cached dates and whether they were present.
	Get(ctx context.Context, propertyID uuid.UUID) ([]civil.Date, bool, error)
	Generation(ctx context.Context, propertyID uuid.UUID) (int64, error)
	// Set stores dates only if the generation is still generation.
	Set(ctx context.Context, propertyID uuid.UUID, generation int64, dates []civil.Date) error
	Invalidate(ctx context.Context, propertyID uuid.UUID) error
}

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1] (missing counts as 0).
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisBlockedDatesCache implements BlockedDatesCache on Redis.
type RedisBlockedDatesCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisBlockedDatesCache creates a new RedisBlockedDatesCache.
func NewRedisBlockedDatesCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisBlockedDatesCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisBlockedDatesCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient builds a client and verifies the server answers.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func key(propertyID uuid.UUID) string {
	return "blocked-dates:" + propertyID.String()
}

func generationKey(propertyID uuid.UUID) string {
	return "blocked-dates-gen:" + propertyID.String()
}

// Get implements BlockedDatesCache.
func (c *RedisBlockedDatesCache) Get(ctx context.Context, propertyID uuid.UUID) ([]civil.Date, bool, error) {
	raw, err := c.client.Get(ctx, key(propertyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blocked dates: %w", err)
	}

	var dates []civil.Date
	if err := json.Unmarshal(raw, &dates); err != nil {
		c.logger.Warn("discarding corrupt blocked-dates entry",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
		return nil, false, nil
	}
	return dates, true, nil
}

// Generation implements BlockedDatesCache.
func (c *RedisBlockedDatesCache) Generation(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(propertyID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read blocked-dates generation: %w", err)
	}
	return gen, nil
}

// Set implements BlockedDatesCache.
func (c *RedisBlockedDatesCache) Set(ctx context.Context, propertyID uuid.UUID, generation int64, dates []civil.Date) error {
	if dates == nil {
		dates = []civil.Date{}
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("failed to marshal blocked dates: %w", err)
	}

	written, err := setIfGeneration.Run(ctx, c.client,
		[]string{generationKey(propertyID), key(propertyID)},
		strconv.FormatInt(generation, 10), string(raw), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to write blocked dates: %w", err)
	}
	if written == 0 {
		c.logger.Debug("skipping stale blocked-dates write",
			zap.String("property_id", propertyID.String()),
			zap.Int64("generation", generation),
		)
	}
	return nil
}

// Invalidate implements BlockedDatesCache.
func (c *RedisBlockedDatesCache) Invalidate(ctx context.Context, propertyID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(propertyID))
		pipe.Del(ctx, key(propertyID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate blocked dates: %w", err)
	}
	return nil
}

// NopBlockedDatesCache never stores anything; every Get is a miss.
type NopBlockedDatesCache struct{}

func (NopBlockedDatesCache) Get(context.Context, uuid.UUID) ([]civil.Date, bool, error) {
	return nil, false, nil
}

func (NopBlockedDatesCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (NopBlockedDatesCache) Set(context.Context, uuid.UUID, int64, []civil.Date) error { return nil }

func (NopBlockedDatesCache) Invalidate(context.Context, uuid.UUID) error { return nil }

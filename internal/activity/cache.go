package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"backend-raceplanner/internal/shared/logging"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes activity history in Redis. Redis failures are logged and
// fall through to the wrapped provider.
type Cache struct {
	next   HistoryProvider
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(next HistoryProvider, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cache{next: next, redis: redisClient, ttl: ttl, logger: logger}
}

func (c *Cache) ActivityHistory(ctx context.Context, userID string, q HistoryQuery) ([]Activity, error) {
	if c.redis == nil {
		return c.next.ActivityHistory(ctx, userID, q)
	}

	key := cacheKey(userID, q)
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Activity
		if err := json.Unmarshal(raw, &cached); err == nil {
			if len(cached) == 0 {
				return nil, ErrNoHistory
			}
			return cached, nil
		}
		c.logger.Warn("activity cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("activity cache read failed", "key", key, "error", err)
	}

	activities, err := c.next.ActivityHistory(ctx, userID, q)
	if err != nil && !errors.Is(err, ErrNoHistory) {
		return nil, err
	}

	payload, marshalErr := json.Marshal(activitiesOrEmpty(activities))
	if marshalErr == nil {
		if setErr := c.redis.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("activity cache write failed", "key", key, "error", setErr)
		}
	}
	return activities, err
}

// Invalidate drops every cached history window of userID.
func (c *Cache) Invalidate(ctx context.Context, userID string) (int, error) {
	if c.redis == nil {
		return 0, nil
	}
	var keys []string
	iter := c.redis.Scan(ctx, 0, userKeyPrefix(userID)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := c.redis.Del(ctx, keys...).Result()
	return int(removed), err
}

func userKeyPrefix(userID string) string {
	return "activities:" + userID + ":"
}

// cacheKey buckets the window start by day so repeated plans on the same day
// share an entry.
func cacheKey(userID string, q HistoryQuery) string {
	sports := q.SportTypes
	if len(sports) == 0 {
		sports = RunningSports
	}
	return fmt.Sprintf("%s%s:%s:%d", userKeyPrefix(userID), q.StartDate.UTC().Format("2006-01-02"), strings.Join(sports, ","), q.Limit)
}

func activitiesOrEmpty(activities []Activity) []Activity {
	if activities == nil {
		return []Activity{}
	}
	return activities
}

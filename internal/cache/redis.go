package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client    *redis.Client
	trainsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, trainsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		trainsTTL: trainsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetTrains returns nil, nil on a cache miss.
func (c *RedisCache) GetTrains(ctx context.Context, origin, destination string) ([]domain.Train, error) {
	data, err := c.client.Get(ctx, routeKey(origin, destination)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trains []domain.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

func (c *RedisCache) SetTrains(ctx context.Context, origin, destination string, trains []domain.Train) error {
	payload, err := json.Marshal(trains)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeKey(origin, destination), payload, c.trainsTTL).Err()
}

func (c *RedisCache) InvalidateRoute(ctx context.Context, origin, destination string) error {
	return c.client.Del(ctx, routeKey(origin, destination)).Err()
}

// AcquireTrainLock takes the cross-instance booking lock for a train.
// The returned token must be passed to ReleaseTrainLock.
func (c *RedisCache) AcquireTrainLock(ctx context.Context, trainID int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, trainLockKey(trainID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseTrainLock(ctx context.Context, trainID int64, token string) error {
	return releaseScript.Run(ctx, c.client, []string{trainLockKey(trainID)}, token).Err()
}

func routeKey(origin, destination string) string {
	return fmt.Sprintf("cache:trains:%s:%s", domain.NormalizeStation(origin), domain.NormalizeStation(destination))
}

func trainLockKey(trainID int64) string {
	return fmt.Sprintf("lock:train:%d", trainID)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const REDIS_SVC = "redis_svc"

const (
	tokenBlacklistPrefix = "blacklist:token:"
	leaderboardCacheKey  = "leaderboard:top"

	redisPingTimeout = 5 * time.Second
)

var errRedisNotInitialized = errors.New("redis client not initialized")

// Cache stores JSON values with an expiry. It backs the token blacklist and
// the leaderboard cache.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type RedisService struct {
	appContext.DefaultService

	options *redis.Options
	redis   *redis.Client
}

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.options = &redis.Options{
		Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           getEnvInt("REDIS_DB", 0),
		DialTimeout:  redisPingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	svc.redis = redis.NewClient(svc.options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := svc.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", svc.options.Addr, err)
	}

	log.WithField("addr", svc.options.Addr).Info("Connected to Redis")
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

// Set stores strings and byte slices as-is and JSON-encodes everything else.
func (svc *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if svc.redis == nil {
		return errRedisNotInitialized
	}

	var payload interface{} = value
	switch value.(type) {
	case string, []byte:
	default:
		data, err := shared.JSONAPI.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for %s: %w", key, err)
		}
		payload = data
	}

	return svc.redis.Set(ctx, key, payload, expiration).Err()
}

// GetJSON decodes the value at key into dest and reports whether the key existed.
func (svc *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if svc.redis == nil {
		return false, errRedisNotInitialized
	}

	raw, err := svc.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}

	if err := shared.JSONAPI.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (svc *RedisService) Delete(ctx context.Context, keys ...string) error {
	if svc.redis == nil {
		return errRedisNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return svc.redis.Del(ctx, keys...).Err()
}

func (svc *RedisService) Exists(ctx context.Context, key string) (bool, error) {
	if svc.redis == nil {
		return false, errRedisNotInitialized
	}

	n, err := svc.redis.Exists(ctx, key).Result()
	return n > 0, err
}

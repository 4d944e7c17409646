package configsredis

import (
	"context"
	"os"
	"time"

	"kiliheights.com/configs/configslog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// InitRedis connects the optional redis cache. The cache is a nice-to-have for
// the public departures pages, so a missing REDIS_ADDR or an unreachable server
// only logs a warning; callers must tolerate GetRedis returning nil.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		configslog.SLog.Info("REDIS_ADDR not set, featured-departures cache disabled")
		return
	}

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		configslog.Log.Warn("redis unreachable, featured-departures cache disabled",
			zap.String("addr", addr), zap.Error(err))
		return
	}

	client = c
	configslog.SLog.Infof("redis cache connected: %s", addr)
}

// GetRedis returns the shared client, or nil when the cache is disabled.
func GetRedis() *redis.Client {
	return client
}

// CloseRedis closes the client if one was established.
func CloseRedis() {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		configslog.Log.Error("failed to close redis client", zap.Error(err))
	}
}

package mock

import (
	"context"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var redisClient *redis.Client

// NewRedis returns a client backed by an in-process miniredis instance.
func NewRedis() *redis.Client {
	redisOnce.Do(func() {
		miniRedis, err := miniredis.Run()
		if err != nil {
			panic(err)
		}

		redisClient = redis.NewClient(&redis.Options{
			Addr: miniRedis.Addr(),
		})
	})

	return redisClient
}

// ClearRedis flushes all keys so rate-limit counters reset between scenarios.
func ClearRedis(client *redis.Client) error {
	return client.FlushAll(context.TODO()).Err()
}

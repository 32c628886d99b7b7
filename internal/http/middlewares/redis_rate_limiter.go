package middlewares

import (
	"time"

	"github.com/davegitonga/pricehub/internal/redisclient"
	"github.com/gin-gonic/gin"
)

// RedisRateLimiter is the cross-process variant of RateLimiter: a fixed
// window implemented with INCR + EXPIRE so multiple instances share one
// budget per key. On redis errors it fails open.
type RedisRateLimiter struct {
	client *redisclient.Client
	window time.Duration
	limit  int
}

func NewRedisRateLimiter(client *redisclient.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		window: window,
		limit:  limit,
	}
}

func (rl *RedisRateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		key = "ratelimit:" + key

		ctx := c.Request.Context()
		rdb := rl.client.Raw()

		count, err := rdb.Incr(ctx, key).Result()

		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			// first hit opens the window
			_ = rdb.Expire(ctx, key, rl.window).Err()
		}

		if count > int64(rl.limit) {
			retryAfter := int(rl.window.Seconds())

			if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			rejectRateLimited(c, retryAfter)
			return
		}

		c.Next()
	}
}

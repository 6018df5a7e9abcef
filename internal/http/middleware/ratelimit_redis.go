package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by the
// limiters. Without Redis (empty addr or failed ping) every limiter is
// fail-open so the API stays available.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return
	}
	redisClient = client
}

// fixedWindow bumps the counter behind key and reports how many calls the
// current window has seen. ok is false when Redis itself failed; callers
// treat that as allow.
func fixedWindow(ctx context.Context, key string, window time.Duration) (count int64, ok bool) {
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val, true
}

// RedisRateLimit caps requests per client IP with a fixed window counter
// in Redis. Key format: rl:<window_seconds>:<ip>.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		count, ok := fixedWindow(c.Request.Context(), key, window)
		if !ok {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

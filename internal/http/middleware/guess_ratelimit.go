package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GuessRateLimit caps the mutating game calls (next question, submit
// answer) per member, not per IP, using Redis. Requires JWT middleware to
// run first.
func GuessRateLimit(maxCalls int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		memberIDVal, exists := c.Get("member_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		memberID, ok := memberIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid member"})
			return
		}

		key := "guess_rl:" + strconv.FormatInt(memberID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		val, ok := fixedWindow(c.Request.Context(), key, window)
		if !ok {
			c.Header("X-GuessRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-GuessRateLimit-Limit", strconv.Itoa(maxCalls))
		remaining := int64(maxCalls) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-GuessRateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxCalls) {
			RLBlocked.WithLabelValues("game:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "game rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("game:" + c.FullPath()).Inc()
		c.Next()
	}
}

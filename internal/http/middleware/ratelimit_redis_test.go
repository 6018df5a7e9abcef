package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Runs only against a live Redis: set REDIS_ADDR.
func TestRedisRateLimit(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
	if redisClient == nil {
		t.Fatalf("redis at %s did not answer ping", addr)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	const limit = 2
	r.GET("/ping", RedisRateLimit(limit, 2*time.Second), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < limit; i++ {
		res, err := http.Get(srv.URL + "/ping")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, res.StatusCode)
		}
	}

	res, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("over-limit request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d requests, got %d", limit, res.StatusCode)
	}
}

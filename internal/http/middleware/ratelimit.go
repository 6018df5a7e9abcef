package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type memoryWindow struct {
	start time.Time
	count int
}

// MemoryRateLimiter is an in-process fixed-window limiter keyed by client
// IP. It covers endpoints where a Redis round trip per request is not
// worth it, such as websocket upgrades.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string]*memoryWindow
}

func NewMemoryRateLimiter(max int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		max:     max,
		window:  window,
		clients: make(map[string]*memoryWindow),
	}
}

func (l *MemoryRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.Sub(w.start) > l.window {
		l.clients[ip] = &memoryWindow{start: now, count: 1}
		l.prune(now)
		return true
	}
	w.count++
	return w.count <= l.max
}

// prune drops expired windows; called under mu on window rollover, which
// bounds the map to clients seen within the last window.
func (l *MemoryRateLimiter) prune(now time.Time) {
	for ip, w := range l.clients {
		if now.Sub(w.start) > l.window {
			delete(l.clients, ip)
		}
	}
}

func (l *MemoryRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

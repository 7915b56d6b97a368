package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"contacts-platform/pkg/logger"
	"contacts-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const window = time.Minute

// Limiter caps requests per client IP per minute. The shared counter lives
// in redis (fixed window) so the cap holds across replicas; when redis is
// unavailable the limiter degrades to an in-process token bucket rather
// than failing open entirely.
type Limiter struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{
		rdb:   rdb,
		local: map[string]*rate.Limiter{},
	}
}

// Middleware limits to perMinute requests per client IP for the routes it
// is attached to. name keeps counters for different route groups separate.
func (l *Limiter) Middleware(name string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + name + ":" + c.ClientIP()

		allowed, err := utils.AllowFixedWindow(c.Request.Context(), l.rdb, key, perMinute, window)
		if err != nil {
			logger.FromGin(c).Warn("rate limiter falling back to local bucket", "err", err)
			allowed = l.allowLocal(key, perMinute)
		}

		if !allowed {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (l *Limiter) allowLocal(key string, perMinute int) bool {
	l.mu.Lock()
	lim, ok := l.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(window/time.Duration(perMinute)), perMinute)
		l.local[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

const visitorIdleEviction = 3 * time.Minute

type visitorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter tracks one token bucket per client IP. Idle entries are
// evicted so the map stays bounded under churny public traffic.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorEntry
	limit    rate.Limit
	burst    int
}

func newIPLimiter(every time.Duration, burst int) *ipLimiter {
	l := &ipLimiter{
		visitors: make(map[string]*visitorEntry),
		limit:    rate.Every(every),
		burst:    burst,
	}
	go l.evictLoop()
	return l
}

func (l *ipLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for ip, v := range l.visitors {
			if time.Since(v.lastSeen) > visitorIdleEviction {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitorEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers: the dashboard gets a generous per-second budget, while auth,
// uploads and public checkout are throttled per minute.
var (
	generalLimiter  = newIPLimiter(time.Second, 10)
	authLimiter     = newIPLimiter(time.Minute, 5)
	uploadLimiter   = newIPLimiter(time.Minute, 10)
	checkoutLimiter = newIPLimiter(time.Minute, 20)
)

func GeneralRateLimit() gin.HandlerFunc {
	return generalLimiter.handler()
}

func AuthRateLimit() gin.HandlerFunc {
	return authLimiter.handler()
}

func UploadRateLimit() gin.HandlerFunc {
	return uploadLimiter.handler()
}

func CheckoutRateLimit() gin.HandlerFunc {
	return checkoutLimiter.handler()
}

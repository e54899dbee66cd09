package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

// tooManyRequests 429，Retry-After 按补一个令牌所需的时间估算
func tooManyRequests(c *gin.Context, l *zap.Logger, rps rate.Limit) {
	if rps > 0 {
		secs := int(math.Ceil(1 / float64(rps)))
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	ez.Fail(c, l, &ez.AErr{Code: resp.CodeTooManyRequests})
}

// RateLimit 全局令牌桶限速；rps <= 0 关闭
func RateLimit(rps float64, burst int, l *zap.Logger) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooManyRequests(c, l, lim.Limit())
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// PerIPLimiter 每 IP 一个令牌桶，空闲超过 ttl 的桶被回收
type PerIPLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*ipBucket
	lastGC  time.Time
	now     func() time.Time
}

func NewPerIPLimiter(rps float64, burst int) *PerIPLimiter {
	return &PerIPLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     10 * time.Minute,
		buckets: make(map[string]*ipBucket),
		now:     time.Now,
	}
}

func (p *PerIPLimiter) limiter(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastGC) > p.ttl {
		for k, b := range p.buckets {
			if now.Sub(b.seen) > p.ttl {
				delete(p.buckets, k)
			}
		}
		p.lastGC = now
	}
	b, ok := p.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(p.rps, p.burst)}
		p.buckets[ip] = b
	}
	b.seen = now
	return b.lim
}

func (p *PerIPLimiter) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

func (p *PerIPLimiter) Middleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p.rps <= 0 {
			c.Next()
			return
		}
		lim := p.limiter(c.ClientIP())
		if lim.Allow() {
			c.Next()
			return
		}
		tooManyRequests(c, l, p.rps)
	}
}

// RateLimitPerIP 每 IP 限速
func RateLimitPerIP(rps float64, burst int, l *zap.Logger) gin.HandlerFunc {
	return NewPerIPLimiter(rps, burst).Middleware(l)
}

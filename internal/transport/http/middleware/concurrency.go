package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时在处理的请求数（保护 DB 下游）；等到请求超时仍拿不到则 503
func ConcurrencyLimit(max int64, l *zap.Logger) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			ez.Fail(c, l, &ez.AErr{Code: resp.CodeServiceUnavailable, Err: err})
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

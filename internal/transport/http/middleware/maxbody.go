package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/transport/http/ez"
)

// MaxBodyBytes 限制请求体大小；声明长度超限直接 413，否则由读取时的 MaxBytesError 触发
func MaxBodyBytes(n int64, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			ez.Fail(c, l, ez.TooLarge())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

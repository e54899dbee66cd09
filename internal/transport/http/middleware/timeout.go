package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

// Timeout 给请求上下文加截止时间；处理超时且尚未写响应时回 504
func Timeout(d time.Duration, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			ez.Fail(c, l, &ez.AErr{Code: resp.CodeTimeout, Err: ctx.Err()})
		}
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookmarks-api/internal/transport/http/ez"
)

const maxRequestIDLen = 64

// RequestID 透传合法的 X-Request-ID，否则生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(ez.RequestIDKey)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(ez.RequestIDKey, rid)
		c.Set(ez.RequestIDKey, rid)
		c.Next()
	}
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}

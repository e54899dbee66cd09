package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/transport/http/ez"
)

// Authenticator 校验 API key 并解析出请求身份
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// AuthAPIKey Bearer API key → Identity；缺失或无效一律 401
func AuthAPIKey(a Authenticator, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			ez.Fail(c, l, domain.Unauthenticated())
			return
		}
		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			ez.Fail(c, l, err)
			return
		}
		ez.SetIdentity(c, id)
		c.Next()
	}
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

package ez

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bookmarks-api/internal/domain"
)

const (
	identityKey  = "identity"
	RequestIDKey = "X-Request-ID"
)

func SetIdentity(c *gin.Context, id domain.Identity) { c.Set(identityKey, id) }

// IdentityOf 未鉴权时返回零值
func IdentityOf(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

// ParamID 路径 id；非正整数按资源不存在处理
func ParamID(c *gin.Context, name, resource string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, domain.NotFound(resource)
	}
	return uint(v), nil
}

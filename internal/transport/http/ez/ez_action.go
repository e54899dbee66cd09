package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/domain"
	resp "bookmarks-api/internal/transport/http/response"
)

// EZ 轻封装：一个路由分组 + 统一的错误日志
type EZ struct {
	g *gin.RouterGroup
	l *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, l: l}
}

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // 从 JSON 绑定并校验
	BindPage Binder = "page" // 列表参数 page/per_page/order_by/search，I 必须是 domain.PageQuery
	BindNone Binder = "none" // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PATCH" | "DELETE"
	Path    string   // 例："/bookmarks/:id"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求已鉴权身份
	Roles   []string // 限定角色（可选）
	Status  int      // 成功状态码，默认 200；204 不写 body
	Handler func(c *gin.Context, id domain.Identity, in *I) (O, error)
}

// 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		id := IdentityOf(c)
		if a.Auth {
			if !id.Authenticated() {
				Fail(c, e.l, domain.Unauthenticated())
				return
			}
			if len(a.Roles) > 0 && !hasRole(id.Role, a.Roles) {
				Fail(c, e.l, domain.Forbidden(""))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = BindBody(c, &in)
		case BindPage:
			if pq, ok := any(&in).(*domain.PageQuery); ok {
				*pq, bindErr = ParsePageQuery(c)
			}
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			Fail(c, e.l, bindErr)
			return
		}

		// 3) 执行
		out, err := a.Handler(c, id, &in)

		// 4) 统一错误映射
		if err != nil {
			Fail(c, e.l, err)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		if r, ok := any(out).(resp.Resp); ok {
			c.JSON(status, r)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

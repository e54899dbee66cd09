package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/core/config"
	"bookmarks-api/internal/core/server"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/ez"
	mdw "bookmarks-api/internal/transport/http/middleware"
	resp "bookmarks-api/internal/transport/http/response"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log    *zap.Logger
	Env    string
	Limits config.Limits

	Auth      *service.AuthService
	Bookmarks *service.BookmarkService
	Tags      *service.TagService
	Users     *service.UserService

	// Health 依赖探活（DB/Redis），nil 表示总是健康
	Health func(ctx context.Context) error
}

func (d Deps) registry() *Registry {
	r := &Registry{}
	r.Register(
		authModule{svc: d.Auth},
		bookmarkModule{svc: d.Bookmarks},
		tagModule{tags: d.Tags, bookmarks: d.Bookmarks},
		userModule{svc: d.Users},
	)
	return r
}

// base 公共中间件链 + /health + /metrics + 404/405 信封
func base(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(server.Options{Env: d.Env}, mdw.Recovery(l))
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l, "/health", "/metrics"),
		mdw.RateLimit(d.Limits.RPS, d.Limits.Burst, l),
		mdw.ConcurrencyLimit(d.Limits.MaxConcurrent, l),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes, l),
		mdw.Timeout(time.Duration(d.Limits.TimeoutSec)*time.Second, l),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, resp.Error(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeServiceUnavailable, "unhealthy"))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := base(d)
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}

	api := r.Group("/api/v1")

	// 注册 / 换 key 按 IP 限速
	authGroup := api.Group("")
	authGroup.Use(mdw.RateLimitPerIP(d.Limits.AuthRPS, d.Limits.AuthBurst, l))

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.AuthAPIKey(d.Auth, l))

	d.registry().MountAPI(Groups{
		Auth:   ez.New(authGroup, l),
		Authed: ez.New(authed, l),
	})
	return r
}

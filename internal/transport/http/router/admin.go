package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/transport/http/ez"
	mdw "bookmarks-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（API key + admin 角色）
func NewAdminEngine(d Deps) *gin.Engine {
	r := base(d)
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthAPIKey(d.Auth, l))

	d.registry().MountAdmin(ez.New(admin, l))
	return r
}

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

// userModule 管理端：用户列表 / 删除
type userModule struct{ svc *service.UserService }

func (m userModule) MountAdmin(admin ez.EZ) {
	// --- GET /admin/v1/users  用户列表（search 按 name/email） ---
	ez.RegisterAction(admin, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindPage,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, id domain.Identity, q *domain.PageQuery) (resp.Resp, error) {
			p, err := m.svc.List(c.Request.Context(), id, *q)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.Paged(mapItems(p.Items, newUserStatsResource), p.Total, p.Page, p.PerPage, c.Request.URL), nil
		},
	})

	// --- DELETE /admin/v1/users/:id  删除用户及其书签、tag ---
	ez.RegisterAction(admin, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (struct{}, error) {
			uid, err := ez.ParamID(c, "id", "User")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.svc.Delete(c.Request.Context(), id, uid)
		},
	})
}

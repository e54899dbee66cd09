package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

type tagModule struct {
	tags      *service.TagService
	bookmarks *service.BookmarkService
}

func tagID(c *gin.Context) (uint, error) { return ez.ParamID(c, "id", "Tag") }

func (m tagModule) MountAPI(g Groups) {
	e := g.Authed

	ez.RegisterAction(e, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet, Path: "/tags", Binder: ez.BindPage, Auth: true,
		Handler: func(c *gin.Context, id domain.Identity, q *domain.PageQuery) (resp.Resp, error) {
			p, err := m.tags.List(c.Request.Context(), id, *q)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.Paged(mapItems(p.Items, newTagResource), p.Total, p.Page, p.PerPage, c.Request.URL), nil
		},
	})
	ez.RegisterAction(e, ez.Action[tagReq, tagResource]{
		Method: http.MethodPost, Path: "/tags", Binder: ez.BindJSON, Auth: true, Status: http.StatusCreated,
		Handler: func(c *gin.Context, id domain.Identity, in *tagReq) (tagResource, error) {
			t, err := m.tags.Create(c.Request.Context(), id, in.Name)
			if err != nil {
				return tagResource{}, err
			}
			return newTagResource(t), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, tagResource]{
		Method: http.MethodGet, Path: "/tags/:id", Binder: ez.BindNone, Auth: true,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (tagResource, error) {
			tid, err := tagID(c)
			if err != nil {
				return tagResource{}, err
			}
			t, err := m.tags.Get(c.Request.Context(), id, tid)
			if err != nil {
				return tagResource{}, err
			}
			return newTagResource(t), nil
		},
	})
	ez.RegisterAction(e, ez.Action[tagReq, tagResource]{
		Method: http.MethodPatch, Path: "/tags/:id", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, id domain.Identity, in *tagReq) (tagResource, error) {
			tid, err := tagID(c)
			if err != nil {
				return tagResource{}, err
			}
			t, err := m.tags.Rename(c.Request.Context(), id, tid, in.Name)
			if err != nil {
				return tagResource{}, err
			}
			return newTagResource(t), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete, Path: "/tags/:id", Binder: ez.BindNone, Auth: true, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (struct{}, error) {
			tid, err := tagID(c)
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.tags.Delete(c.Request.Context(), id, tid)
		},
	})

	// tag 下的书签：tag 必须挂在本人某个书签上
	ez.RegisterAction(e, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet, Path: "/tags/:id/bookmarks", Binder: ez.BindPage, Auth: true,
		Handler: func(c *gin.Context, id domain.Identity, q *domain.PageQuery) (resp.Resp, error) {
			tid, err := tagID(c)
			if err != nil {
				return resp.Resp{}, err
			}
			p, err := m.bookmarks.ListByTag(c.Request.Context(), id, tid, *q)
			if err != nil {
				return resp.Resp{}, err
			}
			return pagedBookmarks(c, p), nil
		},
	})
}

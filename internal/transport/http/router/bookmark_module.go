package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/ez"
	resp "bookmarks-api/internal/transport/http/response"
)

type bookmarkModule struct{ svc *service.BookmarkService }

func pagedBookmarks(c *gin.Context, p domain.Page[domain.Bookmark]) resp.Resp {
	return resp.Paged(mapItems(p.Items, newBookmarkResource), p.Total, p.Page, p.PerPage, c.Request.URL)
}

func (m bookmarkModule) list(scope domain.BookmarkScope) func(*gin.Context, domain.Identity, *domain.PageQuery) (resp.Resp, error) {
	return func(c *gin.Context, id domain.Identity, q *domain.PageQuery) (resp.Resp, error) {
		p, err := m.svc.List(c.Request.Context(), id, scope, *q)
		if err != nil {
			return resp.Resp{}, err
		}
		return pagedBookmarks(c, p), nil
	}
}

// one 按路径 id 执行单书签操作
func (m bookmarkModule) one(op func(context.Context, domain.Identity, uint) (*domain.Bookmark, error)) func(*gin.Context, domain.Identity, *struct{}) (bookmarkResource, error) {
	return func(c *gin.Context, id domain.Identity, _ *struct{}) (bookmarkResource, error) {
		bid, err := ez.ParamID(c, "id", "Bookmark")
		if err != nil {
			return bookmarkResource{}, err
		}
		b, err := op(c.Request.Context(), id, bid)
		if err != nil {
			return bookmarkResource{}, err
		}
		return newBookmarkResource(b), nil
	}
}

func (m bookmarkModule) MountAPI(g Groups) {
	e := g.Authed

	ez.RegisterAction(e, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet, Path: "/bookmarks", Binder: ez.BindPage, Auth: true,
		Handler: m.list(domain.ScopeActive),
	})
	ez.RegisterAction(e, ez.Action[bookmarkCreateReq, bookmarkResource]{
		Method: http.MethodPost, Path: "/bookmarks", Binder: ez.BindJSON, Auth: true, Status: http.StatusCreated,
		Handler: func(c *gin.Context, id domain.Identity, in *bookmarkCreateReq) (bookmarkResource, error) {
			b, err := m.svc.Create(c.Request.Context(), id, in.input())
			if err != nil {
				return bookmarkResource{}, err
			}
			return newBookmarkResource(b), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, bookmarkResource]{
		Method: http.MethodGet, Path: "/bookmarks/:id", Binder: ez.BindNone, Auth: true,
		Handler: m.one(m.svc.Get),
	})
	ez.RegisterAction(e, ez.Action[bookmarkUpdateReq, bookmarkResource]{
		Method: http.MethodPatch, Path: "/bookmarks/:id", Binder: ez.BindJSON, Auth: true,
		Handler: func(c *gin.Context, id domain.Identity, in *bookmarkUpdateReq) (bookmarkResource, error) {
			bid, err := ez.ParamID(c, "id", "Bookmark")
			if err != nil {
				return bookmarkResource{}, err
			}
			b, err := m.svc.Update(c.Request.Context(), id, bid, in.patch())
			if err != nil {
				return bookmarkResource{}, err
			}
			return newBookmarkResource(b), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete, Path: "/bookmarks/:id", Binder: ez.BindNone, Auth: true, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (struct{}, error) {
			bid, err := ez.ParamID(c, "id", "Bookmark")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.svc.Delete(c.Request.Context(), id, bid)
		},
	})

	// 收藏
	ez.RegisterAction(e, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet, Path: "/favorites", Binder: ez.BindPage, Auth: true,
		Handler: m.list(domain.ScopeFavorites),
	})
	ez.RegisterAction(e, ez.Action[struct{}, bookmarkResource]{
		Method: http.MethodPatch, Path: "/favorites/:id", Binder: ez.BindNone, Auth: true,
		Handler: m.one(m.svc.Favorite),
	})
	ez.RegisterAction(e, ez.Action[struct{}, bookmarkResource]{
		Method: http.MethodDelete, Path: "/favorites/:id", Binder: ez.BindNone, Auth: true,
		Handler: m.one(m.svc.Unfavorite),
	})

	// 归档
	ez.RegisterAction(e, ez.Action[domain.PageQuery, resp.Resp]{
		Method: http.MethodGet, Path: "/archives", Binder: ez.BindPage, Auth: true,
		Handler: m.list(domain.ScopeArchived),
	})
	ez.RegisterAction(e, ez.Action[struct{}, bookmarkResource]{
		Method: http.MethodPatch, Path: "/archives/:id", Binder: ez.BindNone, Auth: true,
		Handler: m.one(m.svc.Archive),
	})
	ez.RegisterAction(e, ez.Action[struct{}, bookmarkResource]{
		Method: http.MethodDelete, Path: "/archives/:id", Binder: ez.BindNone, Auth: true,
		Handler: m.one(m.svc.Unarchive),
	})
}

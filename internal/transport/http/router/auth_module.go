package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/service"
	"bookmarks-api/internal/transport/http/ez"
)

type authModule struct{ svc *service.AuthService }

func (authModule) Priority() int { return 10 }

func (m authModule) MountAPI(g Groups) {
	// POST /register 注册，API key 只走邮件
	ez.RegisterAction(g.Auth, ez.Action[registerReq, messageResource]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ domain.Identity, in *registerReq) (messageResource, error) {
			_, _, err := m.svc.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return messageResource{}, err
			}
			return messageResource{Message: service.MsgRegistered}, nil
		},
	})

	// POST /regenerate-api-key 旧 key 立即失效
	ez.RegisterAction(g.Auth, ez.Action[regenerateReq, messageResource]{
		Method: http.MethodPost,
		Path:   "/regenerate-api-key",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Identity, in *regenerateReq) (messageResource, error) {
			if _, err := m.svc.RegenerateAPIKey(c.Request.Context(), in.Email, in.Password); err != nil {
				return messageResource{}, err
			}
			return messageResource{Message: service.MsgRegenerated}, nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, userResource]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, id domain.Identity, _ *struct{}) (userResource, error) {
			u, err := m.svc.Me(c.Request.Context(), id)
			if err != nil {
				return userResource{}, err
			}
			return newUserResource(u), nil
		},
	})
}

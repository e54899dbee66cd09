package ez

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmarks-api/internal/domain"
)

type noteReq struct {
	Title string   `json:"title" validate:"required,max=10"`
	Link  string   `json:"link" validate:"omitempty,url"`
	Tags  []string `json:"tags" validate:"omitempty,dive,max=5"`
}

func (r *noteReq) Validate() domain.FieldErrors {
	f := domain.FieldErrors{}
	if r.Title == "forbidden" {
		f.Add("title", "The title is reserved.")
	}
	return f
}

type envelope struct {
	Code   int                 `json:"code"`
	Msg    string              `json:"msg"`
	Data   json.RawMessage     `json:"data"`
	Errors map[string][]string `json:"errors"`
}

func newEngine(register func(e EZ)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(New(r.Group(""), nil))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func echoNotes(e EZ) {
	RegisterAction(e, Action[noteReq, noteReq]{
		Method: http.MethodPost, Path: "/notes", Binder: BindJSON, Status: http.StatusCreated,
		Handler: func(_ *gin.Context, _ domain.Identity, in *noteReq) (noteReq, error) { return *in, nil },
	})
}

func TestBindBodyValid(t *testing.T) {
	r := newEngine(echoNotes)
	w, env := do(t, r, http.MethodPost, "/notes", `{"title":"go","link":"https://go.dev","tags":["a"]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.JSONEq(t, `{"title":"go","link":"https://go.dev","tags":["a"]}`, string(env.Data))
}

func TestBindBodyFieldErrors(t *testing.T) {
	r := newEngine(echoNotes)
	w, env := do(t, r, http.MethodPost, "/notes", `{"link":"nope","tags":["ok","toolong"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Code)
	assert.Equal(t, []string{"The title field is required."}, env.Errors["title"])
	assert.Equal(t, []string{"The link must be a valid URL."}, env.Errors["link"])
	assert.Equal(t, []string{"The tags.1 must not be greater than 5 characters."}, env.Errors["tags.1"])
}

func TestBindBodyValidateHook(t *testing.T) {
	r := newEngine(echoNotes)
	w, env := do(t, r, http.MethodPost, "/notes", `{"title":"forbidden"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "The title is reserved.", env.Msg)
}

func TestBindBodyDecodeErrors(t *testing.T) {
	r := newEngine(echoNotes)

	w, env := do(t, r, http.MethodPost, "/notes", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Malformed JSON body.", env.Msg)

	w, env = do(t, r, http.MethodPost, "/notes", `{"title":12}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "title")

	// 空 body 当作 {}
	w, env = do(t, r, http.MethodPost, "/notes", ``)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Errors, "title")
}

func TestBindBodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 8)
		c.Next()
	})
	echoNotes(New(r.Group(""), nil))

	w, env := do(t, r, http.MethodPost, "/notes", `{"title":"a much longer title than allowed"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, env.Code)
}

func TestParsePageQuery(t *testing.T) {
	var got domain.PageQuery
	r := newEngine(func(e EZ) {
		RegisterAction(e, Action[domain.PageQuery, string]{
			Method: http.MethodGet, Path: "/items", Binder: BindPage,
			Handler: func(_ *gin.Context, _ domain.Identity, in *domain.PageQuery) (string, error) {
				got = *in
				return "ok", nil
			},
		})
	})

	w, _ := do(t, r, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PageQuery{Page: 1, PerPage: 15, Order: domain.OrderNewest}, got)

	w, _ = do(t, r, http.MethodGet, "/items?page=2&per_page=10&order_by=oldest&search=+down+", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PageQuery{Page: 2, PerPage: 10, Order: domain.OrderOldest, Search: "down"}, got)

	w, env := do(t, r, http.MethodGet, "/items?page=0&per_page=101&order_by=random", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"The page must be at least 1."}, env.Errors["page"])
	assert.Equal(t, []string{"The per page must not be greater than 100."}, env.Errors["per_page"])
	assert.Equal(t, []string{"The order_by value is invalid. Valid values are `newest` and `oldest`."}, env.Errors["order_by"])

	w, env = do(t, r, http.MethodGet, "/items?per_page=ten", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"The per page must be an integer."}, env.Errors["per_page"])

	w, env = do(t, r, http.MethodGet, "/items?page=9999999999999", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"The page must not be greater than 2147483647."}, env.Errors["page"])
}

func TestAuthAndRoles(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-User") != "" {
			SetIdentity(c, domain.Identity{UserID: 7, Role: c.GetHeader("X-User")})
		}
		c.Next()
	})
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[struct{}, uint]{
		Method: http.MethodGet, Path: "/admin", Binder: BindNone, Auth: true, Roles: []string{domain.RoleAdmin},
		Handler: func(_ *gin.Context, id domain.Identity, _ *struct{}) (uint, error) { return id.UserID, nil },
	})
	RegisterAction(e, Action[struct{}, struct{}]{
		Method: http.MethodDelete, Path: "/things/:id", Binder: BindNone, Auth: true, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (struct{}, error) {
			_, err := ParamID(c, "id", "Thing")
			return struct{}{}, err
		},
	})

	w, env := do(t, r, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthenticated.", env.Msg)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User", domain.RoleUser)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User", domain.RoleAdmin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/things/abc", nil)
	req.Header.Set("X-User", domain.RoleUser)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/things/3", nil)
	req.Header.Set("X-User", domain.RoleUser)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.Unauthenticated(), 401, "Unauthenticated."},
		{domain.Forbidden(""), 403, "This action is unauthorized."},
		{domain.NotFound("Bookmark"), 404, "Bookmark not found."},
		{domain.Conflict("already"), 409, "already"},
		{domain.Invalid("name", "bad"), 422, "bad"},
		{BadRequest("Malformed JSON body."), 400, "Malformed JSON body."},
		{assert.AnError, 500, "Server Error."},
	}
	for _, tc := range cases {
		status, msg := Status(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.msg, msg)
	}
}

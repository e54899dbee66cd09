package ez

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarks-api/internal/domain"
	resp "bookmarks-api/internal/transport/http/response"
)

// AErr 传输层错误（非业务），直接带状态码
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func TooLarge() error             { return &AErr{Code: resp.CodeTooLarge} }

// Status 错误 → (HTTP 状态, 对外 msg)
func Status(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		msg := ae.Msg
		if msg == "" {
			msg = resp.CodeMsgMap[ae.Code]
		}
		return ae.Code, msg
	}
	var de *domain.Error
	msg := ""
	if errors.As(err, &de) {
		msg = de.Message
	}
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, orDefault(msg, resp.CodeUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, orDefault(msg, resp.CodeForbidden)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, orDefault(msg, resp.CodeNotFound)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, orDefault(msg, resp.CodeConflict)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, orDefault(msg, resp.CodeUnprocessable)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp.CodeMsgMap[resp.CodeTimeout]
	}
	return http.StatusInternalServerError, resp.CodeMsgMap[resp.CodeServerError]
}

func orDefault(msg string, code int) string {
	if msg != "" {
		return msg
	}
	return resp.CodeMsgMap[code]
}

// Fail 写错误信封；500 记录原始错误，对外隐藏
func Fail(c *gin.Context, l *zap.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		l.Error("request failed",
			zap.String("rid", c.GetString(RequestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	r := resp.Error(status, msg)
	if fields := domain.FieldsOf(err); len(fields) > 0 {
		r.Errors = fields
	}
	c.AbortWithStatusJSON(status, r)
}

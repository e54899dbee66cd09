package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bookmarks-api/internal/domain"
)

// Validatable 结构体校验之外的补充规则
type Validatable interface {
	Validate() domain.FieldErrors
}

// Normalizer 校验前的清洗（trim 等）
type Normalizer interface {
	Normalize()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
	indexRe      = regexp.MustCompile(`\[(\d+)\]`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// 错误字段名用 json tag
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// BindBody 解析 JSON（空 body 视为 {}）并校验
func BindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return decodeError(err)
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return Validate(dst)
}

// Validate 校验 validate tag + Validatable，返回 domain 校验错误
func Validate(v any) error {
	fields := domain.FieldErrors{}
	if err := validatorInstance().Struct(v); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, fe := range ves {
			name := fieldName(fe)
			fields.Add(name, message(name, fe))
		}
	}
	if x, ok := v.(Validatable); ok {
		fields.Merge(x.Validate())
	}
	if len(fields) == 0 {
		return nil
	}
	return domain.Validation(fields)
}

// fieldName createReq.tags[0] → tags.0
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return indexRe.ReplaceAllString(ns, ".$1")
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "min":
		if fe.Param() == "1" && fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field is required.", field)
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must not be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

func decodeError(err error) error {
	var (
		syn  *json.SyntaxError
		typ  *json.UnmarshalTypeError
		size *http.MaxBytesError
	)
	switch {
	case errors.As(err, &size):
		return TooLarge()
	case errors.As(err, &typ):
		field := typ.Field
		if field == "" {
			return BadRequest("The request body must be a JSON object.")
		}
		return domain.Invalid(field, fmt.Sprintf("The %s field has an invalid type.", field))
	case errors.As(err, &syn), errors.Is(err, io.ErrUnexpectedEOF):
		return BadRequest("Malformed JSON body.")
	}
	return BadRequest(err.Error())
}

// ParsePageQuery page / per_page / order_by / search；非法值给字段错误
func ParsePageQuery(c *gin.Context) (domain.PageQuery, error) {
	q := domain.PageQuery{Page: 1, PerPage: domain.DefaultPerPage, Order: domain.OrderNewest}
	fields := domain.FieldErrors{}

	if v, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		switch {
		case err != nil:
			fields.Add("page", "The page must be an integer.")
		case n < 1:
			fields.Add("page", "The page must be at least 1.")
		case n > domain.MaxPage:
			fields.Add("page", fmt.Sprintf("The page must not be greater than %d.", domain.MaxPage))
		default:
			q.Page = n
		}
	}
	if v, ok := c.GetQuery("per_page"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		switch {
		case err != nil:
			fields.Add("per_page", "The per page must be an integer.")
		case n < 1:
			fields.Add("per_page", "The per page must be at least 1.")
		case n > domain.MaxPerPage:
			fields.Add("per_page", fmt.Sprintf("The per page must not be greater than %d.", domain.MaxPerPage))
		default:
			q.PerPage = n
		}
	}
	if v, ok := c.GetQuery("order_by"); ok {
		o := domain.Order(strings.TrimSpace(v))
		if !o.Valid() {
			fields.Add("order_by", "The order_by value is invalid. Valid values are `newest` and `oldest`.")
		} else {
			q.Order = o
		}
	}
	if v, ok := c.GetQuery("search"); ok {
		q.Search = strings.TrimSpace(v)
	}

	if len(fields) > 0 {
		return q, domain.Validation(fields)
	}
	return q, nil
}

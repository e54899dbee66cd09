package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"bookmarks-api/internal/domain"
	"bookmarks-api/internal/service"
)

const maxTagLen = 255

// TagList 区分 tags 缺省（Set=false）与显式给出（null 视为 []）
type TagList struct {
	Set   bool
	Names []string
}

func (t *TagList) UnmarshalJSON(b []byte) error {
	t.Set = true
	t.Names = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return &json.UnmarshalTypeError{Value: "tags", Type: reflect.TypeOf(names), Field: "tags"}
	}
	t.Names = names
	return nil
}

// validate 每个 tag 规整后非空且不超长
func (t TagList) validate() domain.FieldErrors {
	f := domain.FieldErrors{}
	for i, raw := range t.Names {
		field := fmt.Sprintf("tags.%d", i)
		name := service.NormalizeTagName(raw)
		switch {
		case name == "":
			f.Add(field, fmt.Sprintf("The %s field is required.", field))
		case utf8.RuneCountInString(name) > maxTagLen:
			f.Add(field, fmt.Sprintf("The %s must not be greater than %d characters.", field, maxTagLen))
		}
	}
	return f
}

type registerReq struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *registerReq) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

type regenerateReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *regenerateReq) Normalize() { r.Email = strings.TrimSpace(r.Email) }

type bookmarkCreateReq struct {
	Title    string  `json:"title" validate:"required,max=255"`
	URL      string  `json:"url" validate:"required,url,max=255"`
	Favorite *bool   `json:"favorite" validate:"required"`
	Tags     TagList `json:"tags"`
}

func (r *bookmarkCreateReq) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
}

func (r *bookmarkCreateReq) Validate() domain.FieldErrors { return r.Tags.validate() }

func (r *bookmarkCreateReq) input() service.BookmarkInput {
	return service.BookmarkInput{Title: r.Title, URL: r.URL, Favorite: *r.Favorite, Tags: r.Tags.Names}
}

// bookmarkUpdateReq 字段缺省即不改
type bookmarkUpdateReq struct {
	Title    *string `json:"title" validate:"omitnil,min=1,max=255"`
	URL      *string `json:"url" validate:"omitnil,min=1,url,max=255"`
	Favorite *bool   `json:"favorite"`
	Tags     TagList `json:"tags"`
}

func (r *bookmarkUpdateReq) Normalize() {
	for _, p := range []*string{r.Title, r.URL} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func (r *bookmarkUpdateReq) Validate() domain.FieldErrors { return r.Tags.validate() }

// patch tags 缺省 → 不动；null 或 [] → 解除全部关联；其余 → 同步成给定列表
func (r *bookmarkUpdateReq) patch() service.BookmarkPatch {
	p := service.BookmarkPatch{Title: r.Title, URL: r.URL, Favorite: r.Favorite}
	if r.Tags.Set {
		names := r.Tags.Names
		if names == nil {
			names = []string{}
		}
		p.Tags = &names
	}
	return p
}

// tagReq name 的规则（必填、长度、唯一）在 TagService 里统一校验
type tagReq struct {
	Name string `json:"name"`
}

package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	// ErrDuplicate 唯一约束冲突，仅在内部消化
	ErrDuplicate = errors.New("duplicate")
)

// FieldErrors 字段 → 错误信息列表
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) { f[field] = append(f[field], msg) }

func (f FieldErrors) Merge(o FieldErrors) {
	for k, v := range o {
		f[k] = append(f[k], v...)
	}
}

// First 按字段名排序后的第一条，用作 msg
func (f FieldErrors) First() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(f[k]) > 0 {
			return f[k][0]
		}
	}
	return ""
}

type Error struct {
	Kind    error
	Message string
	Fields  FieldErrors
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func Unauthenticated() *Error {
	return &Error{Kind: ErrUnauthenticated, Message: "Unauthenticated."}
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "This action is unauthorized."
	}
	return &Error{Kind: ErrForbidden, Message: msg}
}

func NotFound(resource string) *Error {
	return &Error{Kind: ErrNotFound, Message: strings.TrimSpace(resource + " not found.")}
}

func Conflict(msg string) *Error { return &Error{Kind: ErrConflict, Message: msg} }

func Invalid(field, msg string) *Error {
	return Validation(FieldErrors{field: {msg}})
}

func Validation(fields FieldErrors) *Error {
	msg := fields.First()
	if n := len(fields); n > 1 {
		msg += " (and more errors)"
	}
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

// FieldsOf 取出校验错误的字段明细
func FieldsOf(err error) FieldErrors {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

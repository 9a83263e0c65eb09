package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	// KindProvider 外部服务（TMDB / KOBIS）请求失败或响应格式异常，总是就地降级
	KindProvider Kind = "provider"
	// KindStorage 本地持久化失败，操作中止且不产生部分写入
	KindStorage Kind = "storage"
	// KindValidation 写入前的输入校验失败
	KindValidation Kind = "validation"
	// KindDuplicate 重复记录 / 重复想看，仅作为警告
	KindDuplicate Kind = "duplicate"
	// KindNotFound 目标记录不存在
	KindNotFound Kind = "not_found"
)

// Error 应用错误
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类错误视为相等，便于 errors.Is(err, apperr.ErrDuplicate) 这类判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// 哨兵错误，只用于 errors.Is 比较
var (
	ErrProvider   = &Error{Kind: KindProvider}
	ErrStorage    = &Error{Kind: KindStorage}
	ErrValidation = &Error{Kind: KindValidation}
	ErrDuplicate  = &Error{Kind: KindDuplicate}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

// Provider 包装外部服务错误
func Provider(op string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// Storage 包装数据库错误
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// Validation 创建校验错误
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Duplicate 创建重复错误
func Duplicate(op, format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound 创建不存在错误
func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误链上第一个 *Error 的分类，非应用错误返回空字符串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

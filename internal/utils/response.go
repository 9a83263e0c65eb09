package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/logging"
)

// Response 统一API响应结构
type Response struct {
	Code     int         `json:"code"`               // 状态码
	Message  string      `json:"message"`            // 消息
	Data     interface{} `json:"data"`               // 数据
	Success  bool        `json:"success"`            // 是否成功
	Warnings []string    `json:"warnings,omitempty"` // 降级提示（外部服务失败、重复记录等）
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithWarnings(c, data, nil)
}

// SuccessWithWarnings 返回成功响应并附带警告
func SuccessWithWarnings(c *gin.Context, data interface{}, warnings []string) {
	c.JSON(http.StatusOK, Response{
		Code:     http.StatusOK,
		Message:  "success",
		Data:     data,
		Success:  true,
		Warnings: warnings,
	})
}

// Created 返回201
func Created(c *gin.Context, data interface{}, warnings []string) {
	c.JSON(http.StatusCreated, Response{
		Code:     http.StatusCreated,
		Message:  "created",
		Data:     data,
		Success:  true,
		Warnings: warnings,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未授权"
	}
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	Error(c, http.StatusNotFound, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "服务器内部错误"
	}
	Error(c, http.StatusInternalServerError, message)
}

// Fail 按错误分类返回响应
//
// 重复记录是软错误，返回 409 且 warnings 中带原因；读操作的外部服务错误已降级，
// 走到这里时按 200 + 空数据 + 警告处理。写操作使用 FailWrite。
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, apperr.ErrDuplicate):
		c.JSON(http.StatusConflict, Response{
			Code:     http.StatusConflict,
			Message:  "duplicate",
			Success:  false,
			Warnings: []string{err.Error()},
		})
	case errors.Is(err, apperr.ErrProvider):
		SuccessWithWarnings(c, nil, []string{err.Error()})
	default:
		// 存储错误与未分类错误
		logging.Error().Err(err).Bool("storage", errors.Is(err, apperr.ErrStorage)).Str("path", c.Request.URL.Path).Msg("[API] 请求处理失败")
		InternalServerError(c, "")
	}
}

// FailWrite 写操作的错误响应
//
// 外部服务失败导致写入中止时返回 502，其余同 Fail。
func FailWrite(c *gin.Context, err error) {
	if errors.Is(err, apperr.ErrProvider) {
		c.JSON(http.StatusBadGateway, Response{
			Code:     http.StatusBadGateway,
			Message:  "外部服务不可用，未写入",
			Success:  false,
			Warnings: []string{err.Error()},
		})
		return
	}
	Fail(c, err)
}

// Warnings 把降级错误转为提示文本，nil 跳过
func Warnings(errs ...error) []string {
	var out []string
	for _, err := range errs {
		if err != nil {
			out = append(out, err.Error())
		}
	}
	return out
}

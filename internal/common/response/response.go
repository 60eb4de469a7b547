// Package response 统一响应格式
//
// 业务错误一律返回 HTTP 200，由 code 区分；只有协议层问题（参数、认证、权限、限流、
// 未捕获错误）使用对应的 HTTP 状态码，code 与状态码相同。
package response

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeOK 成功
const CodeOK = 0

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageData 分页数据
type PageData struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: message, Data: data})
}

func SuccessPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, PageData{List: list, Total: total, Page: page, PageSize: pageSize})
}

// Attachment 文件下载，文件名按 RFC 6266 编码，报表名可能含非 ASCII 字符
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}

// Error 业务错误
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{Code: code, Message: message})
}

// status 协议层错误，message 为空时使用标准状态文本
func status(c *gin.Context, httpStatus int, message string) {
	if message == "" {
		message = http.StatusText(httpStatus)
	}
	c.JSON(httpStatus, Response{Code: httpStatus, Message: message})
}

func BadRequest(c *gin.Context, message string)      { status(c, http.StatusBadRequest, message) }
func Unauthorized(c *gin.Context, message string)    { status(c, http.StatusUnauthorized, message) }
func Forbidden(c *gin.Context, message string)       { status(c, http.StatusForbidden, message) }
func NotFound(c *gin.Context, message string)        { status(c, http.StatusNotFound, message) }
func InternalError(c *gin.Context, message string)   { status(c, http.StatusInternalServerError, message) }
func TooManyRequests(c *gin.Context, message string) { status(c, http.StatusTooManyRequests, message) }

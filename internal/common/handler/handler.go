// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、身份获取、参数解析等操作
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
)

// ============================================================================
// Phase 1: 统一错误处理
// ============================================================================

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（调用方应该 return）
//
// 使用示例:
//
//	result, err := service.DoSomething()
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.IsAppError(err) {
		appErr := errors.GetAppError(err)
		response.Error(c, appErr.Code, appErr.Message)
		return true
	}
	_ = c.Error(err)
	tracing.SetError(c.Request.Context(), err)
	response.InternalError(c, "服务器内部错误")
	return true
}

// MustSucceed 便捷封装：如果有错误则返回错误响应，否则返回成功响应
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedWithMessage 便捷封装：带自定义成功消息
func MustSucceedWithMessage(c *gin.Context, err error, message string, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.SuccessWithMessage(c, message, data)
}

// MustSucceedPage 便捷封装：分页响应版本
//
// 使用示例:
//
//	list, total, err := service.List(ctx, p.GetOffset(), p.GetLimit())
//	MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// ============================================================================
// Phase 2: 员工身份
// ============================================================================

// Actor 当前操作员工
type Actor struct {
	StaffID int64
	Name    string
	Role    string
}

// RequireActor 获取当前员工，未登录则返回401响应
func RequireActor(c *gin.Context) (Actor, bool) {
	staffID := middleware.GetStaffID(c)
	if staffID == 0 {
		response.Unauthorized(c, "请先登录")
		return Actor{}, false
	}
	return Actor{
		StaffID: staffID,
		Name:    middleware.GetActorName(c),
		Role:    middleware.GetRole(c),
	}, true
}

// ============================================================================
// Phase 3: ID 参数解析
// ============================================================================

// ParseID 解析路径参数 "id" 为 int64
// 返回 (0, false) 表示解析失败（已发送400响应，调用方应该 return）
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为 int64
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID
// 参数为空返回 (nil, true)；解析失败返回 (nil, false)（已发送400响应）
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return nil, false
	}
	return &id, true
}

// ============================================================================
// Phase 4: 时间解析辅助
// ============================================================================

// DateFormat 日期格式
const DateFormat = "2006-01-02"

// ParseDate 解析日期字符串 (YYYY-MM-DD)
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}

// ParseQueryDateRange 从查询参数解析日期范围（start_date, end_date）
// 结束日期会自动调整为当天结束时间（23:59:59）
// 返回 (nil, nil, false) 表示解析失败（已发送400响应）
func ParseQueryDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var start, end *time.Time

	if s := c.Query("start_date"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			response.BadRequest(c, "无效的开始日期格式")
			return nil, nil, false
		}
		start = &t
	}

	if s := c.Query("end_date"); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			response.BadRequest(c, "无效的结束日期格式")
			return nil, nil, false
		}
		endOfDay := t.Add(24*time.Hour - time.Second)
		end = &endOfDay
	}

	return start, end, true
}

// ============================================================================
// Phase 5: 分页处理
// ============================================================================

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, pageSize=20, 最大 pageSize=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p.Normalize()
	return p
}

// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrOperationFailed = New(1009, "操作失败")
	ErrExportFailed    = New(1010, "导出失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2007, "用户名或密码错误")
)

// 员工错误码 (3000-3999)
var (
	ErrStaffNotFound    = New(3000, "员工不存在")
	ErrStaffExists      = New(3001, "用户名已存在")
	ErrNotHousekeeper   = New(3002, "所选员工不是客房清洁员")
	ErrHousekeeperEmpty = New(3003, "请选择负责清洁的员工")
	ErrNotOperator      = New(3004, "该员工无权操作收银")
)

// 房间错误码 (4000-4999)
var (
	ErrRoomNotFound      = New(4000, "房间不存在")
	ErrInvalidTransition = New(4001, "当前房态不允许该操作")
	ErrRoomNotAvailable  = New(4002, "房间不可入住")
	ErrUnblockDisabled   = New(4003, "未开启解除封房")
	ErrInvalidRoomStatus = New(4004, "无效的房态")
)

// 入住错误码 (5000-5999)
var (
	ErrStayNotFound      = New(5000, "入住记录不存在")
	ErrStayExists        = New(5001, "该房间已有入住记录")
	ErrGuestNameRequired = New(5002, "请填写客人姓名")
	ErrDocumentRequired  = New(5003, "请填写证件号码")
	ErrInvalidAmount     = New(5004, "金额必须大于零")
	ErrInvalidQuantity   = New(5005, "数量必须大于零")
	ErrItemRequired      = New(5006, "请填写消费项目")
	ErrInvalidMethod     = New(5007, "无效的支付方式")
	ErrInvalidRate       = New(5008, "房价不能为负数")
	ErrNoWakeUpCall      = New(5009, "该房间未设置叫醒")
)

// 维修错误码 (6000-6999)
var (
	ErrTicketNotFound     = New(6000, "维修工单不存在")
	ErrTicketStatusError  = New(6001, "工单状态不允许该操作")
	ErrIssueRequired      = New(6002, "请填写故障描述")
	ErrInvalidPriority    = New(6003, "无效的优先级")
	ErrTicketRoomRequired = New(6004, "请填写房号")
)

// 收银错误码 (7000-7999)
var (
	ErrShiftClosed          = New(7000, "收银班次未开启")
	ErrShiftAlreadyOpen     = New(7001, "已有进行中的收银班次")
	ErrObservationsRequired = New(7002, "差额超出允许范围，请填写说明")
	ErrInvalidEntryType     = New(7003, "无效的收支类型")
)

// 助手错误码 (8000-8999)
var (
	ErrAssistantUnavailable = New(8000, "助手服务不可用")
	ErrQuestionRequired     = New(8001, "请输入问题")
)

// 预订与商品错误码 (9000-9999)
var (
	ErrReservationNotFound = New(9000, "预订不存在")
	ErrReservationOverlap  = New(9001, "该房间在所选日期已有预订")
	ErrInvalidNights       = New(9002, "入住晚数必须大于零")
	ErrProductNotFound     = New(9100, "商品不存在")
	ErrProductExists       = New(9101, "商品编码已存在")
	ErrInvalidCategory     = New(9102, "无效的商品分类")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, target *AppError) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == target.Code
}

// Package report 看板、流水、审计与报表导出 HTTP Handler
package report

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	reportService "github.com/dumeirei/hotel-frontdesk/internal/service/report"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportService 报表服务
type ReportService interface {
	Board(ctx context.Context) (*reportService.Board, error)
	Activity(ctx context.Context, filter *repository.ActivityFilter, offset, limit int) ([]*models.ActivityLog, int64, error)
	Revenue(ctx context.Context, from, to time.Time) (*reportService.Revenue, error)
	ExportActivityCSV(ctx context.Context, filter *repository.ActivityFilter) ([]byte, string, error)
	ExportTransactionsCSV(ctx context.Context, from, to time.Time) ([]byte, string, error)
	ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, string, error)
}

// TransactionService 收支流水
type TransactionService interface {
	List(ctx context.Context, filter *repository.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error)
}

// Handler 报表处理器
type Handler struct {
	reports      ReportService
	transactions TransactionService
	now          func() time.Time
}

// NewHandler 创建报表处理器
func NewHandler(reports ReportService, transactions TransactionService) *Handler {
	return &Handler{reports: reports, transactions: transactions, now: time.Now}
}

// Board 前台看板
// @Summary 前台看板
// @Tags 报表
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=reportService.Board}
// @Router /api/v1/reports/board [get]
func (h *Handler) Board(c *gin.Context) {
	board, err := h.reports.Board(c.Request.Context())
	handler.MustSucceed(c, err, board)
}

// Transactions 收支流水
// @Summary 收支流水
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param type query string false "income / expense"
// @Param category query string false "分类"
// @Param payment_method query string false "支付方式"
// @Param room_id query int false "客房ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Transaction}}
// @Router /api/v1/transactions [get]
func (h *Handler) Transactions(c *gin.Context) {
	roomID, ok := handler.ParseQueryID(c, "room_id", "客房")
	if !ok {
		return
	}
	start, end, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return
	}
	filter := &repository.TransactionFilter{
		Type:          c.Query("type"),
		Category:      c.Query("category"),
		PaymentMethod: c.Query("payment_method"),
		RoomID:        roomID,
		StartDate:     start,
		EndDate:       end,
	}

	p := handler.BindPagination(c)
	list, total, err := h.transactions.List(c.Request.Context(), filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

func activityFilter(c *gin.Context) (*repository.ActivityFilter, bool) {
	start, end, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return nil, false
	}
	return &repository.ActivityFilter{
		Type:      c.Query("type"),
		Actor:     c.Query("actor"),
		Keyword:   c.Query("keyword"),
		StartDate: start,
		EndDate:   end,
	}, true
}

// Activity 审计日志
// @Summary 审计日志
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param type query string false "类型"
// @Param actor query string false "操作人"
// @Param keyword query string false "关键词"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.ActivityLog}}
// @Router /api/v1/activity [get]
func (h *Handler) Activity(c *gin.Context) {
	filter, ok := activityFilter(c)
	if !ok {
		return
	}
	p := handler.BindPagination(c)
	list, total, err := h.reports.Activity(c.Request.Context(), filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// dateRange 解析报表区间，缺省为本月
func (h *Handler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, end, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	now := h.now()
	if start == nil {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start = &first
	}
	if end == nil {
		end = &now
	}
	if end.Before(*start) {
		response.BadRequest(c, "结束日期不能早于开始日期")
		return time.Time{}, time.Time{}, false
	}
	return *start, *end, true
}

// Revenue 区间营收
// @Summary 区间营收
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param start_date query string false "开始日期 YYYY-MM-DD，默认本月一日"
// @Param end_date query string false "结束日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} response.Response{data=reportService.Revenue}
// @Router /api/v1/reports/revenue [get]
func (h *Handler) Revenue(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	revenue, err := h.reports.Revenue(c.Request.Context(), from, to)
	handler.MustSucceed(c, err, revenue)
}

// Export 导出报表
// @Summary 导出报表
// @Description format=xlsx 导出审计与财务两个工作表；format=csv 时 kind 选择 activity 或 transactions
// @Tags 报表
// @Produce application/octet-stream
// @Security Bearer
// @Param format query string false "xlsx / csv"
// @Param kind query string false "activity / transactions"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {file} file "报表文件"
// @Router /api/v1/reports/export [get]
func (h *Handler) Export(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		data        []byte
		filename    string
		contentType = contentTypeCSV
		err         error
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		contentType = contentTypeXLSX
		data, filename, err = h.reports.ExportXLSX(ctx, from, to)
	case "csv":
		switch c.DefaultQuery("kind", "transactions") {
		case "activity":
			filter, ok := activityFilter(c)
			if !ok {
				return
			}
			filter.StartDate, filter.EndDate = &from, &to
			data, filename, err = h.reports.ExportActivityCSV(ctx, filter)
		case "transactions":
			data, filename, err = h.reports.ExportTransactionsCSV(ctx, from, to)
		default:
			response.BadRequest(c, "无效的导出类型")
			return
		}
	default:
		response.BadRequest(c, "无效的导出格式")
		return
	}
	if handler.HandleError(c, err) {
		return
	}
	response.Attachment(c, filename, contentType, data)
}

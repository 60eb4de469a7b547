// Package cashier 收银交班 HTTP Handler
package cashier

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	cashierService "github.com/dumeirei/hotel-frontdesk/internal/service/cashier"
)

// ShiftService 收银班次服务
type ShiftService interface {
	OpenShift(ctx context.Context, operatorID int64, startingFloat decimal.Decimal, label string) (*models.CashShift, error)
	Current(ctx context.Context) (*cashierService.ShiftView, error)
	RecordEntry(ctx context.Context, entryType string, amount decimal.Decimal, description string) (*models.Transaction, error)
	CloseShift(ctx context.Context, declared cashierService.Declared, observations string) (*cashierService.Closing, error)
	History(ctx context.Context, offset, limit int) ([]*models.CashShift, int64, error)
}

// Handler 收银处理器
type Handler struct {
	shifts ShiftService
	now    func() time.Time
}

// NewHandler 创建收银处理器
func NewHandler(shifts ShiftService) *Handler {
	return &Handler{shifts: shifts, now: time.Now}
}

// OpenRequest 开班
type OpenRequest struct {
	OperatorID    int64           `json:"operator_id" binding:"required"`
	StartingFloat decimal.Decimal `json:"starting_float"`
	Label         string          `json:"label"`
}

// EntryRequest 手工收支
type EntryRequest struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
}

// CloseRequest 交班
type CloseRequest struct {
	Declared     cashierService.Declared `json:"declared"`
	Observations string                  `json:"observations"`
}

// ShiftLabel 按当前时间推算的班次
// @Summary 当前班次名称
// @Tags 收银
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response
// @Router /api/v1/cashier/shift-label [get]
func (h *Handler) ShiftLabel(c *gin.Context) {
	response.Success(c, gin.H{"label": cashierService.DetectShiftLabel(h.now())})
}

// Current 当前班次与实时汇总
// @Summary 当前班次
// @Tags 收银
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=cashierService.ShiftView}
// @Router /api/v1/cashier/shift [get]
func (h *Handler) Current(c *gin.Context) {
	view, err := h.shifts.Current(c.Request.Context())
	handler.MustSucceed(c, err, view)
}

// Open 开班
// @Summary 开班
// @Tags 收银
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body OpenRequest true "开班信息"
// @Success 200 {object} response.Response{data=models.CashShift}
// @Router /api/v1/cashier/shift/open [post]
func (h *Handler) Open(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请选择收银员")
		return
	}

	shift, err := h.shifts.OpenShift(c.Request.Context(), req.OperatorID, req.StartingFloat, req.Label)
	handler.MustSucceedWithMessage(c, err, "开班成功", shift)
}

// RecordEntry 手工收支
// @Summary 手工收支
// @Tags 收银
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body EntryRequest true "收支信息"
// @Success 200 {object} response.Response{data=models.Transaction}
// @Router /api/v1/cashier/entries [post]
func (h *Handler) RecordEntry(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tx, err := h.shifts.RecordEntry(c.Request.Context(), req.Type, req.Amount, req.Description)
	handler.MustSucceed(c, err, tx)
}

// Close 交班
// @Summary 交班
// @Description 差额超出允许范围时必须填写说明
// @Tags 收银
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CloseRequest true "清点金额"
// @Success 200 {object} response.Response{data=cashierService.Closing}
// @Router /api/v1/cashier/shift/close [post]
func (h *Handler) Close(c *gin.Context) {
	if _, ok := handler.RequireActor(c); !ok {
		return
	}
	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	closing, err := h.shifts.CloseShift(c.Request.Context(), req.Declared, req.Observations)
	handler.MustSucceedWithMessage(c, err, "交班成功", closing)
}

// History 历史班次
// @Summary 历史班次
// @Tags 收银
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.CashShift}}
// @Router /api/v1/cashier/shifts [get]
func (h *Handler) History(c *gin.Context) {
	p := handler.BindPagination(c)
	list, total, err := h.shifts.History(c.Request.Context(), p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

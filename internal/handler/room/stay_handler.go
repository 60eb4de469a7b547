package room

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

// Ledger 入住账本
type Ledger interface {
	Statement(ctx context.Context, roomID int64) (*stay.Statement, error)
	UpdateStay(ctx context.Context, roomID int64, p stay.Patch) (*stay.Statement, error)
	AddConsumption(ctx context.Context, roomID int64, item string, unitPrice decimal.Decimal, quantity int) (*models.ConsumptionItem, error)
	AddPayment(ctx context.Context, roomID int64, amount decimal.Decimal, method string) (*models.PaymentEntry, error)
}

// WakeCalls 叫醒操作
type WakeCalls interface {
	Snooze(ctx context.Context, roomID int64, actor string) (*models.Stay, error)
	Dismiss(ctx context.Context, roomID int64, actor string) (*models.Stay, error)
}

// ConsumptionRequest 追加消费
type ConsumptionRequest struct {
	Item      string `json:"item" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// PaymentRequest 追加收款
type PaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method"`
}

// GetStay 入住账单
// @Summary 入住账单
// @Tags 入住
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=stay.Statement}
// @Router /api/v1/rooms/{id}/stay [get]
func (h *Handler) GetStay(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	statement, err := h.ledger.Statement(c.Request.Context(), id)
	handler.MustSucceed(c, err, statement)
}

// UpdateStay 修改入住信息
// @Summary 修改入住信息
// @Tags 入住
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body stay.Patch true "修改字段"
// @Success 200 {object} response.Response{data=stay.Statement}
// @Router /api/v1/rooms/{id}/stay [patch]
func (h *Handler) UpdateStay(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var patch stay.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	statement, err := h.ledger.UpdateStay(c.Request.Context(), id, patch)
	handler.MustSucceed(c, err, statement)
}

// AddConsumption 追加消费
// @Summary 追加消费
// @Tags 入住
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body ConsumptionRequest true "消费项目"
// @Success 200 {object} response.Response{data=models.ConsumptionItem}
// @Router /api/v1/rooms/{id}/stay/consumption [post]
func (h *Handler) AddConsumption(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var req ConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	price, ok := parseAmount(req.UnitPrice)
	if !ok {
		response.BadRequest(c, "无效的金额")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.ledger.AddConsumption(c.Request.Context(), id, req.Item, price, req.Quantity)
	handler.MustSucceed(c, err, item)
}

// AddPayment 追加收款
// @Summary 追加收款
// @Tags 入住
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body PaymentRequest true "收款"
// @Success 200 {object} response.Response{data=models.PaymentEntry}
// @Router /api/v1/rooms/{id}/stay/payments [post]
func (h *Handler) AddPayment(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		response.BadRequest(c, "无效的金额")
		return
	}
	if req.Method == "" {
		req.Method = models.PaymentMethodCash
	}

	entry, err := h.ledger.AddPayment(c.Request.Context(), id, amount, req.Method)
	handler.MustSucceed(c, err, entry)
}

// SnoozeWakeCall 稍后提醒
// @Summary 稍后提醒
// @Tags 叫醒
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/rooms/{id}/wake-call/snooze [post]
func (h *Handler) SnoozeWakeCall(c *gin.Context) {
	h.wakeCall(c, h.wakeups.Snooze)
}

// DismissWakeCall 关闭叫醒
// @Summary 关闭叫醒
// @Tags 叫醒
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/rooms/{id}/wake-call/dismiss [post]
func (h *Handler) DismissWakeCall(c *gin.Context) {
	h.wakeCall(c, h.wakeups.Dismiss)
}

func (h *Handler) wakeCall(c *gin.Context, fn func(ctx context.Context, roomID int64, actor string) (*models.Stay, error)) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	s, err := fn(c.Request.Context(), id, actor.Name)
	handler.MustSucceed(c, err, s)
}

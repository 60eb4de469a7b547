// Package maintenance 维修工单 HTTP Handler
package maintenance

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	maintenanceService "github.com/dumeirei/hotel-frontdesk/internal/service/maintenance"
)

// TicketService 工单服务
type TicketService interface {
	Create(ctx context.Context, req *maintenanceService.CreateTicketRequest, actor string) (*models.MaintenanceTicket, error)
	Start(ctx context.Context, id int64, technician string) (*models.MaintenanceTicket, error)
	Resolve(ctx context.Context, id int64, actor string) (*models.MaintenanceTicket, error)
	List(ctx context.Context, f *maintenanceService.TicketListFilter) ([]*models.MaintenanceTicket, error)
	Counts(ctx context.Context) (map[string]int64, error)
}

// Handler 维修工单处理器
type Handler struct {
	tickets TicketService
}

// NewHandler 创建维修工单处理器
func NewHandler(tickets TicketService) *Handler {
	return &Handler{tickets: tickets}
}

// StartRequest 开始处理
type StartRequest struct {
	Technician string `json:"technician"`
}

// List 工单列表
// @Summary 工单列表
// @Tags 维修
// @Produce json
// @Security Bearer
// @Param room_number query string false "房号"
// @Param status query string false "状态"
// @Param priority query string false "优先级"
// @Param view query string false "active / history"
// @Success 200 {object} response.Response{data=[]models.MaintenanceTicket}
// @Router /api/v1/maintenance/tickets [get]
func (h *Handler) List(c *gin.Context) {
	var f maintenanceService.TicketListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	tickets, err := h.tickets.List(c.Request.Context(), &f)
	handler.MustSucceed(c, err, tickets)
}

// Counts 各状态工单数
// @Summary 各状态工单数
// @Tags 维修
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/maintenance/tickets/counts [get]
func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.tickets.Counts(c.Request.Context())
	handler.MustSucceed(c, err, counts)
}

// Create 登记故障
// @Summary 登记故障
// @Description 空房、待清洁和维修中的房间转为维修中；在住和封房保持原状态
// @Tags 维修
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body maintenanceService.CreateTicketRequest true "工单信息"
// @Success 200 {object} response.Response{data=models.MaintenanceTicket}
// @Router /api/v1/maintenance/tickets [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	var req maintenanceService.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写房号和故障描述")
		return
	}

	ticket, err := h.tickets.Create(c.Request.Context(), &req, actor.Name)
	handler.MustSucceed(c, err, ticket)
}

// Start 开始处理
// @Summary 开始处理
// @Tags 维修
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Param request body StartRequest false "维修人员"
// @Success 200 {object} response.Response{data=models.MaintenanceTicket}
// @Router /api/v1/maintenance/tickets/{id}/start [post]
func (h *Handler) Start(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}
	var req StartRequest
	_ = c.ShouldBindJSON(&req)
	if req.Technician == "" {
		req.Technician = actor.Name
	}

	ticket, err := h.tickets.Start(c.Request.Context(), id, req.Technician)
	handler.MustSucceed(c, err, ticket)
}

// Resolve 维修完成
// @Summary 维修完成
// @Tags 维修
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Success 200 {object} response.Response{data=models.MaintenanceTicket}
// @Router /api/v1/maintenance/tickets/{id}/resolve [post]
func (h *Handler) Resolve(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}

	ticket, err := h.tickets.Resolve(c.Request.Context(), id, actor.Name)
	handler.MustSucceed(c, err, ticket)
}

// Package room 提供客房、入住与叫醒相关的 HTTP Handler
package room

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/lifecycle"
	roomService "github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

// RoomService 客房查询
type RoomService interface {
	List(ctx context.Context, filter *repository.RoomFilter) ([]*roomService.RoomView, error)
	GetView(ctx context.Context, id int64) (*roomService.RoomView, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Lifecycle 房态流转
type Lifecycle interface {
	SelectRoom(ctx context.Context, roomID int64) (*lifecycle.Workflow, error)
	CheckIn(ctx context.Context, roomID int64, contract stay.Contract, actor string) (*models.Stay, error)
	Checkout(ctx context.Context, roomID int64, actor string) (*stay.Statement, error)
	ConfirmCleaning(ctx context.Context, roomID, housekeeperID int64, actor string) (*models.Room, error)
	ResolveMaintenance(ctx context.Context, roomID int64, actor string) (*models.Room, error)
	Block(ctx context.Context, roomID int64, actor string) (*models.Room, error)
	Unblock(ctx context.Context, roomID int64, actor string) (*models.Room, error)
}

// Handler 客房处理器
type Handler struct {
	rooms     RoomService
	lifecycle Lifecycle
	ledger    Ledger
	wakeups   WakeCalls
}

// NewHandler 创建客房处理器
func NewHandler(rooms RoomService, lc Lifecycle, ledger Ledger, wakeups WakeCalls) *Handler {
	return &Handler{rooms: rooms, lifecycle: lc, ledger: ledger, wakeups: wakeups}
}

// CleaningRequest 清洁确认
type CleaningRequest struct {
	HousekeeperID int64 `json:"housekeeper_id"`
}

// List 客房列表
// @Summary 客房列表
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param status query string false "房态"
// @Param category query string false "房型"
// @Param floor query int false "楼层"
// @Success 200 {object} response.Response{data=[]roomService.RoomView}
// @Router /api/v1/rooms [get]
func (h *Handler) List(c *gin.Context) {
	filter := &repository.RoomFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	if f := c.Query("floor"); f != "" {
		floor, err := strconv.Atoi(f)
		if err != nil {
			response.BadRequest(c, "无效的楼层")
			return
		}
		filter.Floor = floor
	}
	if filter.Status != "" && !models.IsValidRoomStatus(filter.Status) {
		response.BadRequest(c, "无效的房态")
		return
	}

	rooms, err := h.rooms.List(c.Request.Context(), filter)
	handler.MustSucceed(c, err, rooms)
}

// Summary 各房态数量
// @Summary 各房态数量
// @Tags 客房
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/rooms/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	counts, err := h.rooms.CountByStatus(c.Request.Context())
	handler.MustSucceed(c, err, counts)
}

// Get 客房详情
// @Summary 客房详情
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=roomService.RoomView}
// @Router /api/v1/rooms/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	view, err := h.rooms.GetView(c.Request.Context(), id)
	handler.MustSucceed(c, err, view)
}

// Workflow 选中房间后的流程
// @Summary 选中房间后的流程
// @Description 响铃优先，其次按房态进入入住、账单、清洁、维修或封房提示
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=lifecycle.Workflow}
// @Router /api/v1/rooms/{id}/workflow [get]
func (h *Handler) Workflow(c *gin.Context) {
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	wf, err := h.lifecycle.SelectRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, wf)
}

// CheckIn 办理入住
// @Summary 办理入住
// @Tags 客房
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body stay.Contract true "入住信息"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/rooms/{id}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var contract stay.Contract
	if err := c.ShouldBindJSON(&contract); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	s, err := h.lifecycle.CheckIn(c.Request.Context(), id, contract, actor.Name)
	handler.MustSucceedWithMessage(c, err, "入住成功", s)
}

// Checkout 办理退房
// @Summary 办理退房
// @Description 返回结账单，余额不为零也允许退房
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=stay.Statement}
// @Router /api/v1/rooms/{id}/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}

	statement, err := h.lifecycle.Checkout(c.Request.Context(), id, actor.Name)
	handler.MustSucceedWithMessage(c, err, "退房成功", statement)
}

// ConfirmCleaning 确认清洁完成
// @Summary 确认清洁完成
// @Tags 客房
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Param request body CleaningRequest true "清洁员"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/cleaning [post]
func (h *Handler) ConfirmCleaning(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	var req CleaningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.lifecycle.ConfirmCleaning(c.Request.Context(), id, req.HousekeeperID, actor.Name)
	handler.MustSucceed(c, err, room)
}

// ResolveMaintenance 维修完成
// @Summary 维修完成
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/maintenance/resolve [post]
func (h *Handler) ResolveMaintenance(c *gin.Context) {
	h.transition(c, h.lifecycle.ResolveMaintenance)
}

// Block 封房
// @Summary 封房
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/block [post]
func (h *Handler) Block(c *gin.Context) {
	h.transition(c, h.lifecycle.Block)
}

// Unblock 解除封房
// @Summary 解除封房
// @Tags 客房
// @Produce json
// @Security Bearer
// @Param id path int true "客房ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/unblock [post]
func (h *Handler) Unblock(c *gin.Context) {
	h.transition(c, h.lifecycle.Unblock)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, roomID int64, actor string) (*models.Room, error)) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "客房")
	if !ok {
		return
	}
	room, err := fn(c.Request.Context(), id, actor.Name)
	handler.MustSucceed(c, err, room)
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	return d, err == nil
}

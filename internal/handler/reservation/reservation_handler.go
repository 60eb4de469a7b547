// Package reservation 预订日历 HTTP Handler
package reservation

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	reservationService "github.com/dumeirei/hotel-frontdesk/internal/service/reservation"
)

// 未指定窗口时默认展示的天数
const defaultWindowDays = 14

// ReservationService 预订服务
type ReservationService interface {
	Create(ctx context.Context, req *reservationService.Request, actor string) (*models.Reservation, error)
	Update(ctx context.Context, id int64, req *reservationService.Request, actor string) (*models.Reservation, error)
	Delete(ctx context.Context, id int64, actor string) error
	List(ctx context.Context, from, to time.Time) ([]*models.Reservation, error)
}

// Handler 预订处理器
type Handler struct {
	reservations ReservationService
	now          func() time.Time
}

// NewHandler 创建预订处理器
func NewHandler(reservations ReservationService) *Handler {
	return &Handler{reservations: reservations, now: time.Now}
}

// List 预订日历
// @Summary 预订日历
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param from query string false "开始日期 YYYY-MM-DD，默认今天"
// @Param to query string false "结束日期 YYYY-MM-DD（不含），默认两周后"
// @Success 200 {object} response.Response{data=[]models.Reservation}
// @Router /api/v1/reservations [get]
func (h *Handler) List(c *gin.Context) {
	today := h.now().Format(reservationService.DateLayout)
	from, err := reservationService.ParseDate(c.DefaultQuery("from", today))
	if err != nil {
		response.BadRequest(c, "无效的开始日期格式")
		return
	}
	to := from.AddDate(0, 0, defaultWindowDays)
	if s := c.Query("to"); s != "" {
		if to, err = reservationService.ParseDate(s); err != nil {
			response.BadRequest(c, "无效的结束日期格式")
			return
		}
	}

	list, err := h.reservations.List(c.Request.Context(), from, to)
	handler.MustSucceed(c, err, list)
}

// Create 新增预订
// @Summary 新增预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body reservationService.Request true "预订信息"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	var req reservationService.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写房号、客人和入住日期")
		return
	}

	r, err := h.reservations.Create(c.Request.Context(), &req, actor.Name)
	handler.MustSucceed(c, err, r)
}

// Update 修改预订
// @Summary 修改预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body reservationService.Request true "预订信息"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}
	var req reservationService.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写房号、客人和入住日期")
		return
	}

	r, err := h.reservations.Update(c.Request.Context(), id, &req, actor.Name)
	handler.MustSucceed(c, err, r)
}

// Delete 删除预订
// @Summary 删除预订
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response
// @Router /api/v1/reservations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	handler.MustSucceedWithMessage(c, h.reservations.Delete(c.Request.Context(), id, actor.Name), "删除成功", nil)
}

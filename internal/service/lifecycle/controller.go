// Package lifecycle 房态流转控制
//
// 所有改变房态的前台操作都经过 Controller：校验当前房态，联动入住账本、维修工单
// 与叫醒，再写审计。任何一次流转之后，房态为在住当且仅当存在入住记录。
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

// Rooms 客房登记
type Rooms interface {
	Get(ctx context.Context, id int64) (*models.Room, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

// Ledger 入住账本
type Ledger interface {
	OpenStay(ctx context.Context, roomID int64, c stay.Contract, actor string) (*models.Stay, error)
	CloseStay(ctx context.Context, roomID int64) (*stay.Statement, error)
}

// Tickets 维修工单
type Tickets interface {
	ResolveFirstOpen(ctx context.Context, roomID int64, actor string) (*models.MaintenanceTicket, error)
}

// Housekeepers 清洁员查询，不是在职清洁员时返回 ErrNotHousekeeper
type Housekeepers interface {
	Housekeeper(ctx context.Context, staffID int64) (*models.Employee, error)
}

// WakeCalls 叫醒
type WakeCalls interface {
	IsRinging(ctx context.Context, roomID int64) (bool, error)
	Clear(ctx context.Context, roomID int64)
}

// Transactor 事务执行
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps 控制器依赖
type Deps struct {
	Rooms        Rooms
	Ledger       Ledger
	Tickets      Tickets
	Housekeepers Housekeepers
	WakeCalls    WakeCalls
	Audit        audit.Recorder
	Tx           Transactor
	AllowUnblock bool
}

// Controller 房态流转控制器
type Controller struct {
	Deps
	now func() time.Time
	log *zap.Logger
}

// NewController 创建控制器
func NewController(deps Deps) *Controller {
	return &Controller{Deps: deps, now: time.Now, log: logger.Named("lifecycle")}
}

// loadIn 读取房间并校验房态
func (c *Controller) loadIn(ctx context.Context, roomID int64, allowed ...string) (*models.Room, error) {
	room, err := c.Rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, s := range allowed {
		if room.Status == s {
			return room, nil
		}
	}
	return nil, errors.ErrInvalidTransition
}

// CheckIn 空房入住
func (c *Controller) CheckIn(ctx context.Context, roomID int64, contract stay.Contract, actor string) (*models.Stay, error) {
	ctx, span := tracing.Start(ctx, "lifecycle.CheckIn", tracing.WithOperation("check_in"))
	defer span.End()

	room, err := c.Rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.WithRoomNumber(room.Number))
	if room.Status != models.RoomStatusAvailable {
		return nil, errors.ErrRoomNotAvailable
	}

	var record *models.Stay
	err = c.Tx.InTx(ctx, func(ctx context.Context) error {
		st, err := c.Ledger.OpenStay(ctx, roomID, contract, actor)
		if err != nil {
			return err
		}
		record = st
		return c.Rooms.SetStatus(ctx, roomID, models.RoomStatusOccupied)
	})
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	span.SetAttributes(tracing.WithStayID(record.ID))
	metrics.GetMetrics().RecordStayEvent("check_in")
	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivityCheckIn,
		Action:      audit.ActionCheckIn,
		Description: fmt.Sprintf("Check-in realizado para %s no quarto %s", record.GuestName, room.Number),
		Actor:       actor,
		Details: models.JSON{
			"room":              room.Number,
			"expected_checkout": record.ExpectedCheckout,
			"daily_rate":        record.DailyRate.StringFixed(2),
		},
	})
	c.log.Info("check-in", logger.RoomNumber(room.Number), logger.StayID(record.ID))
	return record, nil
}

// Checkout 退房，任何余额都允许，房间转为待清洁
func (c *Controller) Checkout(ctx context.Context, roomID int64, actor string) (*stay.Statement, error) {
	ctx, span := tracing.Start(ctx, "lifecycle.Checkout", tracing.WithOperation("checkout"))
	defer span.End()

	room, err := c.loadIn(ctx, roomID, models.RoomStatusOccupied)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.WithRoomNumber(room.Number))

	var final *stay.Statement
	err = c.Tx.InTx(ctx, func(ctx context.Context) error {
		st, err := c.Ledger.CloseStay(ctx, roomID)
		if err != nil {
			return err
		}
		final = st
		return c.Rooms.SetStatus(ctx, roomID, models.RoomStatusDirty)
	})
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	if c.WakeCalls != nil {
		c.WakeCalls.Clear(ctx, roomID)
	}
	metrics.GetMetrics().RecordStayEvent("checkout")

	revenue := final.Totals.RoomTotal.Add(final.Totals.ConsumptionTotal)
	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivityCheckOut,
		Action:      audit.ActionCheckOut,
		Description: fmt.Sprintf("Checkout do hóspede %s no quarto %s. Total: R$ %s", final.Stay.GuestName, room.Number, revenue.StringFixed(2)),
		Actor:       actor,
		Details: models.JSON{
			"room":    room.Number,
			"nights":  final.Totals.Nights,
			"paid":    final.Totals.PaidTotal.StringFixed(2),
			"balance": final.Totals.Balance.StringFixed(2),
		},
	})
	if !final.Totals.Balance.IsZero() {
		c.log.Warn("checkout with open balance",
			logger.RoomNumber(room.Number),
			zap.String("balance", final.Totals.Balance.StringFixed(2)),
		)
	}
	return final, nil
}

// ConfirmCleaning 清洁完成，必须指定在职清洁员
func (c *Controller) ConfirmCleaning(ctx context.Context, roomID, housekeeperID int64, actor string) (*models.Room, error) {
	room, err := c.loadIn(ctx, roomID, models.RoomStatusDirty)
	if err != nil {
		return nil, err
	}
	if housekeeperID == 0 {
		return nil, errors.ErrHousekeeperEmpty
	}
	hk, err := c.Housekeepers.Housekeeper(ctx, housekeeperID)
	if err != nil {
		return nil, err
	}

	if err := c.Rooms.SetStatus(ctx, roomID, models.RoomStatusAvailable); err != nil {
		return nil, err
	}
	room.Status = models.RoomStatusAvailable

	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivityCleaning,
		Action:      audit.ActionCleaningDone,
		Description: fmt.Sprintf("Quarto %s limpo por %s", room.Number, hk.Name),
		Actor:       actor,
		Details:     models.JSON{"room": room.Number, "housekeeper_id": hk.ID},
	})
	return room, nil
}

// ResolveMaintenance 维修完成，关闭该房第一张未完成工单，房间转为待清洁
func (c *Controller) ResolveMaintenance(ctx context.Context, roomID int64, actor string) (*models.Room, error) {
	room, err := c.loadIn(ctx, roomID, models.RoomStatusMaintenance)
	if err != nil {
		return nil, err
	}

	err = c.Tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := c.Tickets.ResolveFirstOpen(ctx, roomID, actor); err != nil {
			return err
		}
		return c.Rooms.SetStatus(ctx, roomID, models.RoomStatusDirty)
	})
	if err != nil {
		return nil, err
	}
	room.Status = models.RoomStatusDirty

	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivityMaintenance,
		Action:      audit.ActionMaintenanceDone,
		Description: fmt.Sprintf("Manutenção concluída no quarto %s. Status alterado para Limpeza.", room.Number),
		Actor:       actor,
	})
	return room, nil
}

// Block 封房，仅限空房
func (c *Controller) Block(ctx context.Context, roomID int64, actor string) (*models.Room, error) {
	room, err := c.loadIn(ctx, roomID, models.RoomStatusAvailable)
	if err != nil {
		return nil, err
	}
	if err := c.Rooms.SetStatus(ctx, roomID, models.RoomStatusBlocked); err != nil {
		return nil, err
	}
	room.Status = models.RoomStatusBlocked

	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionRoomBlocked,
		Description: fmt.Sprintf("Quarto %s bloqueado", room.Number),
		Actor:       actor,
	})
	return room, nil
}

// Unblock 解除封房，需开启 allow_unblock
func (c *Controller) Unblock(ctx context.Context, roomID int64, actor string) (*models.Room, error) {
	if !c.AllowUnblock {
		return nil, errors.ErrUnblockDisabled
	}
	room, err := c.loadIn(ctx, roomID, models.RoomStatusBlocked)
	if err != nil {
		return nil, err
	}
	if err := c.Rooms.SetStatus(ctx, roomID, models.RoomStatusAvailable); err != nil {
		return nil, err
	}
	room.Status = models.RoomStatusAvailable

	c.Audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionRoomUnblocked,
		Description: fmt.Sprintf("Quarto %s desbloqueado", room.Number),
		Actor:       actor,
	})
	return room, nil
}

// 选中房间后进入的流程
const (
	WorkflowWakeCall           = "wake_call"
	WorkflowCheckIn            = "check_in"
	WorkflowStayDetail         = "stay_detail"
	WorkflowCleaning           = "cleaning"
	WorkflowMaintenanceResolve = "maintenance_resolve"
	WorkflowBlockedNotice      = "blocked_notice"
)

// CheckInDefaults 入住表单预填
type CheckInDefaults struct {
	DailyRate        decimal.Decimal `json:"daily_rate"`
	CheckInDate      string          `json:"check_in_date"`
	CheckInTime      string          `json:"check_in_time"`
	ExpectedCheckout string          `json:"expected_checkout"`
}

// Workflow 选中房间的流程
type Workflow struct {
	Kind    string           `json:"kind"`
	Room    *models.Room     `json:"room"`
	CheckIn *CheckInDefaults `json:"check_in,omitempty"`
}

// Route 根据房态和响铃决定流程，响铃优先
func Route(status string, ringing bool) string {
	if ringing {
		return WorkflowWakeCall
	}
	switch status {
	case models.RoomStatusAvailable:
		return WorkflowCheckIn
	case models.RoomStatusOccupied:
		return WorkflowStayDetail
	case models.RoomStatusDirty:
		return WorkflowCleaning
	case models.RoomStatusMaintenance:
		return WorkflowMaintenanceResolve
	default:
		return WorkflowBlockedNotice
	}
}

// SelectRoom 选中房间
func (c *Controller) SelectRoom(ctx context.Context, roomID int64) (*Workflow, error) {
	room, err := c.Rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ringing := false
	if c.WakeCalls != nil {
		if ringing, err = c.WakeCalls.IsRinging(ctx, roomID); err != nil {
			c.log.Warn("ringing lookup failed", logger.RoomID(roomID), zap.Error(err))
			ringing = false
		}
	}

	wf := &Workflow{Kind: Route(room.Status, ringing), Room: room}
	if wf.Kind == WorkflowCheckIn {
		now := c.now()
		wf.CheckIn = &CheckInDefaults{
			DailyRate:        room.BaseRate,
			CheckInDate:      now.Format(stay.DateLayout),
			CheckInTime:      now.Format(stay.TimeLayout),
			ExpectedCheckout: now.AddDate(0, 0, 1).Format(stay.DateLayout),
		}
	}
	return wf, nil
}

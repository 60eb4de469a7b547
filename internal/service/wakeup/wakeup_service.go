// Package wakeup 提供客房叫醒服务
//
// 每间在住房间可设置一个叫醒时间（日期 + 时分）。定时检查发现到点后把房间加入
// 响铃集合并推送到客房终端；前台或客房面板可以稍后提醒或关闭。
package wakeup

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

const scheduleLayout = "2006-01-02 15:04"

// 停止响铃原因
const (
	ReasonSnoozed   = "snoozed"
	ReasonDismissed = "dismissed"
	ReasonCheckout  = "checkout"
)

// PanelActor 客房面板操作的执行人
const PanelActor = "Painel do quarto"

// AlarmPublisher 推送到客房终端
type AlarmPublisher interface {
	PublishAlarm(ctx context.Context, roomNumber, schedule string) error
	PublishCleared(ctx context.Context, roomNumber, reason string) error
}

// WakeUpService 叫醒服务
type WakeUpService struct {
	stayRepo *repository.StayRepository
	roomRepo *repository.RoomRepository
	store    *RingingStore
	alarms   AlarmPublisher
	audit    audit.Recorder
	snooze   time.Duration
	grace    time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewWakeUpService 创建叫醒服务，alarms 可为 nil
func NewWakeUpService(
	stayRepo *repository.StayRepository,
	roomRepo *repository.RoomRepository,
	store *RingingStore,
	alarms AlarmPublisher,
	recorder audit.Recorder,
	cfg *config.FrontDeskConfig,
) *WakeUpService {
	snooze := cfg.WakeUpSnoozeMinutes
	if snooze <= 0 {
		snooze = 10
	}
	grace := cfg.WakeUpGraceMinutes
	if grace < 0 {
		grace = 0
	}
	return &WakeUpService{
		stayRepo: stayRepo,
		roomRepo: roomRepo,
		store:    store,
		alarms:   alarms,
		audit:    recorder,
		snooze:   time.Duration(snooze) * time.Minute,
		grace:    time.Duration(grace) * time.Minute,
		now:      time.Now,
		log:      logger.Named("wakeup"),
	}
}

// parseSchedule 按本地时区解析叫醒时间
func parseSchedule(s *models.Stay, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(scheduleLayout, s.WakeUpSchedule(), loc)
	return t, err == nil
}

// isDue 到点判定：同一分钟，或错过但仍在宽限期内
func (s *WakeUpService) isDue(schedule, now time.Time) bool {
	minute := now.Truncate(time.Minute)
	if minute.Equal(schedule) {
		return true
	}
	return schedule.Before(minute) && now.Sub(schedule) <= s.grace
}

// Check 检查到点的叫醒，返回本次新加入响铃的房间
// 每个叫醒时间只响一次，由 WakeUpFiredFor 记录
func (s *WakeUpService) Check(ctx context.Context, now time.Time) ([]int64, error) {
	ctx, span := tracing.Start(ctx, "wakeup.Check")
	defer span.End()

	stays, err := s.stayRepo.ListWakeUpEnabled(ctx)
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	var fired []int64
	for _, st := range stays {
		schedule, ok := parseSchedule(st, now.Location())
		if !ok {
			continue
		}
		key := st.WakeUpSchedule()
		if st.WakeUpFiredFor == key || !s.isDue(schedule, now) {
			continue
		}

		if _, err := s.store.Add(ctx, st.RoomID); err != nil {
			// 不标记已响，宽限期内下次检查重试
			s.log.Error("add ringing room failed", logger.RoomID(st.RoomID), zap.Error(err))
			continue
		}
		if err := s.stayRepo.UpdateFields(ctx, st.ID, map[string]interface{}{"wake_up_fired_for": key}); err != nil {
			s.log.Error("mark wakeup fired failed", logger.StayID(st.ID), zap.Error(err))
		}

		metrics.GetMetrics().RecordWakeUp("fired")
		span.AddEvent("ringing", trace.WithAttributes(tracing.WithStayID(st.ID)))
		s.publishAlarm(ctx, st.RoomID, key)
		s.log.Info("wakeup ringing", logger.RoomID(st.RoomID), zap.String("schedule", key))
		fired = append(fired, st.RoomID)
	}
	return fired, nil
}

func (s *WakeUpService) roomNumber(ctx context.Context, roomID int64) string {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Sprintf("#%d", roomID)
	}
	return room.Number
}

func (s *WakeUpService) publishAlarm(ctx context.Context, roomID int64, schedule string) {
	if s.alarms == nil {
		return
	}
	if err := s.alarms.PublishAlarm(ctx, s.roomNumber(ctx, roomID), schedule); err != nil {
		s.log.Warn("publish wakeup alarm failed", logger.RoomID(roomID), zap.Error(err))
		return
	}
	metrics.GetMetrics().RecordMQTTMessage("wakeup", "publish")
}

func (s *WakeUpService) publishCleared(ctx context.Context, roomID int64, reason string) {
	if s.alarms == nil {
		return
	}
	if err := s.alarms.PublishCleared(ctx, s.roomNumber(ctx, roomID), reason); err != nil {
		s.log.Warn("publish wakeup cleared failed", logger.RoomID(roomID), zap.Error(err))
		return
	}
	metrics.GetMetrics().RecordMQTTMessage("wakeup", "publish")
}

func (s *WakeUpService) loadStay(ctx context.Context, roomID int64) (*models.Stay, error) {
	st, err := s.stayRepo.GetByRoomID(ctx, roomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return st, nil
}

// Snooze 稍后提醒：叫醒时间顺延，停止响铃，叫醒保持开启
// 跨过午夜时日期一并顺延
func (s *WakeUpService) Snooze(ctx context.Context, roomID int64, actor string) (*models.Stay, error) {
	st, err := s.loadStay(ctx, roomID)
	if err != nil {
		return nil, err
	}
	schedule, ok := parseSchedule(st, s.now().Location())
	if !st.WakeUpEnabled || !ok {
		return nil, errors.ErrNoWakeUpCall
	}

	next := schedule.Add(s.snooze)
	st.WakeUpDate = next.Format("2006-01-02")
	st.WakeUpCall = next.Format("15:04")
	if err := s.stayRepo.UpdateFields(ctx, st.ID, map[string]interface{}{
		"wake_up_enabled": true,
		"wake_up_date":    st.WakeUpDate,
		"wake_up_call":    st.WakeUpCall,
	}); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.clearRinging(ctx, roomID, ReasonSnoozed)
	metrics.GetMetrics().RecordWakeUp("snoozed")
	number := s.roomNumber(ctx, roomID)
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionWakeUpSnoozed,
		Description: fmt.Sprintf("Despertador do quarto %s adiado para %s", number, st.WakeUpCall),
		Actor:       actor,
	})
	return st, nil
}

// Dismiss 关闭叫醒并停止响铃
func (s *WakeUpService) Dismiss(ctx context.Context, roomID int64, actor string) (*models.Stay, error) {
	st, err := s.loadStay(ctx, roomID)
	if err != nil {
		return nil, err
	}
	st.WakeUpEnabled = false
	if err := s.stayRepo.UpdateFields(ctx, st.ID, map[string]interface{}{"wake_up_enabled": false}); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.clearRinging(ctx, roomID, ReasonDismissed)
	metrics.GetMetrics().RecordWakeUp("dismissed")
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionWakeUpDismissed,
		Description: fmt.Sprintf("Despertador do quarto %s desligado", s.roomNumber(ctx, roomID)),
		Actor:       actor,
	})
	return st, nil
}

// Clear 退房时停止响铃
func (s *WakeUpService) Clear(ctx context.Context, roomID int64) {
	s.clearRinging(ctx, roomID, ReasonCheckout)
}

func (s *WakeUpService) clearRinging(ctx context.Context, roomID int64, reason string) {
	removed, err := s.store.Remove(ctx, roomID)
	if err != nil {
		s.log.Warn("remove ringing room failed", logger.RoomID(roomID), zap.Error(err))
		return
	}
	if removed {
		s.publishCleared(ctx, roomID, reason)
	}
}

// IsRinging 房间是否在响铃
func (s *WakeUpService) IsRinging(ctx context.Context, roomID int64) (bool, error) {
	ok, err := s.store.Contains(ctx, roomID)
	if err != nil {
		return false, errors.ErrCacheError.WithError(err)
	}
	return ok, nil
}

// RingingRooms 全部响铃房间
func (s *WakeUpService) RingingRooms(ctx context.Context) (map[int64]bool, error) {
	rooms, err := s.store.Members(ctx)
	if err != nil {
		return nil, errors.ErrCacheError.WithError(err)
	}
	return rooms, nil
}

// HandlePanelAck 处理客房面板按键
func (s *WakeUpService) HandlePanelAck(ctx context.Context, roomNumber, action string) {
	room, err := s.roomRepo.GetByNumber(ctx, roomNumber)
	if err != nil {
		s.log.Warn("wakeup ack for unknown room", logger.RoomNumber(roomNumber), zap.Error(err))
		return
	}
	switch action {
	case "snooze":
		_, err = s.Snooze(ctx, room.ID, PanelActor)
	case "dismiss":
		_, err = s.Dismiss(ctx, room.ID, PanelActor)
	default:
		return
	}
	if err != nil {
		s.log.Warn("wakeup ack failed", logger.RoomNumber(roomNumber), logger.Action(action), zap.Error(err))
	}
}

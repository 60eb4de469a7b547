package wakeup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

type alarmCall struct {
	event, room, detail string
}

type recordingAlarms struct {
	calls []alarmCall
}

func (r *recordingAlarms) PublishAlarm(_ context.Context, room, schedule string) error {
	r.calls = append(r.calls, alarmCall{"ringing", room, schedule})
	return nil
}

func (r *recordingAlarms) PublishCleared(_ context.Context, room, reason string) error {
	r.calls = append(r.calls, alarmCall{"cleared", room, reason})
	return nil
}

type testWakeUpService struct {
	*WakeUpService
	db     *gorm.DB
	mr     *miniredis.Miniredis
	alarms *recordingAlarms
	room   *models.Room
	stay   *models.Stay
}

func setupTestWakeUpService(t *testing.T, date, call string) *testWakeUpService {
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)

	room := &models.Room{Number: "41", Floor: 2, Category: models.RoomCategoryLuxury, BedType: models.BedTypeDouble, BaseRate: decimal.NewFromInt(400), Status: models.RoomStatusOccupied}
	require.NoError(t, db.Create(room).Error)
	stay := &models.Stay{
		RoomID: room.ID, GuestName: "Bruno", DocumentType: models.DocumentTypeRG, Document: "9",
		CheckInDate: "2026-03-09", ExpectedCheckout: "2026-03-11", DailyRate: decimal.NewFromInt(400),
		WakeUpEnabled: true, WakeUpDate: date, WakeUpCall: call,
	}
	require.NoError(t, db.Create(stay).Error)

	alarms := &recordingAlarms{}
	svc := NewWakeUpService(
		repository.NewStayRepository(db),
		repository.NewRoomRepository(db),
		NewRingingStore(rdb),
		alarms,
		audit.NewActivityService(repository.NewActivityRepository(db), nil),
		&config.FrontDeskConfig{WakeUpSnoozeMinutes: 10, WakeUpGraceMinutes: 5},
	)
	return &testWakeUpService{WakeUpService: svc, db: db, mr: mr, alarms: alarms, room: room, stay: stay}
}

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 3, 10, hour, min, sec, 0, time.Local)
}

func (s *testWakeUpService) reload(t *testing.T) *models.Stay {
	t.Helper()
	var st models.Stay
	require.NoError(t, s.db.First(&st, s.stay.ID).Error)
	return &st
}

func TestWakeUpService_FiresOnceForSchedule(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	fired, err := svc.Check(ctx, at(6, 29, 50))
	require.NoError(t, err)
	assert.Empty(t, fired)

	fired, err = svc.Check(ctx, at(6, 30, 10))
	require.NoError(t, err)
	assert.Equal(t, []int64{svc.room.ID}, fired)

	// 同一分钟内再次检查不重复响铃
	fired, err = svc.Check(ctx, at(6, 30, 40))
	require.NoError(t, err)
	assert.Empty(t, fired)

	ringing, err := svc.IsRinging(ctx, svc.room.ID)
	require.NoError(t, err)
	assert.True(t, ringing)
	assert.Equal(t, "2026-03-10 06:30", svc.reload(t).WakeUpFiredFor)
	assert.Equal(t, []alarmCall{{"ringing", "41", "2026-03-10 06:30"}}, svc.alarms.calls)
}

func TestWakeUpService_GraceWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"错过两分钟仍响", at(6, 32, 0), true},
		{"宽限期边界", at(6, 35, 0), true},
		{"超出宽限期", at(6, 36, 0), false},
		{"其他日期", time.Date(2026, 3, 11, 6, 30, 0, 0, time.Local), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
			fired, err := svc.Check(context.Background(), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, len(fired) == 1)
		})
	}
}

func TestWakeUpService_DisabledNeverFires(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	require.NoError(t, svc.db.Model(svc.stay).Update("wake_up_enabled", false).Error)

	fired, err := svc.Check(context.Background(), at(6, 30, 0))
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestWakeUpService_RedisFailureRetriesNextTick(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	svc.mr.SetError("connection refused")
	fired, err := svc.Check(ctx, at(6, 30, 0))
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Empty(t, svc.reload(t).WakeUpFiredFor)

	svc.mr.SetError("")
	fired, err = svc.Check(ctx, at(6, 31, 0))
	require.NoError(t, err)
	assert.Len(t, fired, 1)
}

func TestWakeUpService_Snooze(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	_, err := svc.Check(ctx, at(6, 30, 0))
	require.NoError(t, err)

	st, err := svc.Snooze(ctx, svc.room.ID, "Carla")
	require.NoError(t, err)
	assert.Equal(t, "06:40", st.WakeUpCall)
	assert.True(t, svc.reload(t).WakeUpEnabled)

	ringing, err := svc.IsRinging(ctx, svc.room.ID)
	require.NoError(t, err)
	assert.False(t, ringing)

	// 顺延后的时间会再次响铃
	fired, err := svc.Check(ctx, at(6, 40, 0))
	require.NoError(t, err)
	assert.Len(t, fired, 1)

	var log models.ActivityLog
	require.NoError(t, svc.db.Where("action = ?", audit.ActionWakeUpSnoozed).First(&log).Error)
	assert.Equal(t, "Carla", log.Actor)
	assert.Contains(t, svc.alarms.calls, alarmCall{"cleared", "41", ReasonSnoozed})
}

func TestWakeUpService_SnoozeRollsOverMidnight(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "23:55")

	st, err := svc.Snooze(context.Background(), svc.room.ID, "Carla")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", st.WakeUpDate)
	assert.Equal(t, "00:05", st.WakeUpCall)
}

func TestWakeUpService_SnoozeWithoutWakeUp(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	require.NoError(t, svc.db.Model(svc.stay).Update("wake_up_enabled", false).Error)

	_, err := svc.Snooze(context.Background(), svc.room.ID, "Carla")
	assert.True(t, errors.IsCode(err, errors.ErrNoWakeUpCall))

	_, err = svc.Snooze(context.Background(), 999, "Carla")
	assert.True(t, errors.IsCode(err, errors.ErrStayNotFound))
}

func TestWakeUpService_Dismiss(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	_, err := svc.Check(ctx, at(6, 30, 0))
	require.NoError(t, err)

	_, err = svc.Dismiss(ctx, svc.room.ID, "Carla")
	require.NoError(t, err)
	assert.False(t, svc.reload(t).WakeUpEnabled)

	rooms, err := svc.RingingRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestWakeUpService_ClearOnlyPublishesWhenRinging(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	svc.Clear(ctx, svc.room.ID)
	assert.Empty(t, svc.alarms.calls)

	_, err := svc.Check(ctx, at(6, 30, 0))
	require.NoError(t, err)
	svc.Clear(ctx, svc.room.ID)
	assert.Equal(t, alarmCall{"cleared", "41", ReasonCheckout}, svc.alarms.calls[1])
}

func TestWakeUpService_HandlePanelAck(t *testing.T) {
	svc := setupTestWakeUpService(t, "2026-03-10", "06:30")
	ctx := context.Background()

	svc.HandlePanelAck(ctx, "41", "snooze")
	assert.Equal(t, "06:40", svc.reload(t).WakeUpCall)

	svc.HandlePanelAck(ctx, "41", "dismiss")
	assert.False(t, svc.reload(t).WakeUpEnabled)

	assert.NotPanics(t, func() { svc.HandlePanelAck(ctx, "999", "dismiss") })
}

package reservation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

type testReservationService struct {
	*ReservationService
	db *gorm.DB
}

func setupTestReservationService(t *testing.T) *testReservationService {
	db := testutil.NewDB(t)
	rooms := room.NewRoomService(
		repository.NewRoomRepository(db),
		repository.NewStayRepository(db),
		&config.FrontDeskConfig{Floors: []config.FloorRange{{Name: "1º Andar", Category: models.RoomCategoryStandard, From: 25, To: 27, BaseRate: 250}}},
	)
	_, err := rooms.Generate(context.Background())
	require.NoError(t, err)

	svc := NewReservationService(
		repository.NewReservationRepository(db),
		rooms,
		audit.NewActivityService(repository.NewActivityRepository(db), nil),
	)
	return &testReservationService{ReservationService: svc, db: db}
}

func TestReservationService_CreateAndOverlap(t *testing.T) {
	svc := setupTestReservationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Ana", StartDate: "2026-03-02", Nights: 4}, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-06", r.EndDate.Format(DateLayout))

	tests := []struct {
		name string
		req  Request
		want *errors.AppError
	}{
		{"区间重叠", Request{RoomNumber: "25", GuestName: "Bia", StartDate: "2026-03-05", Nights: 2}, errors.ErrReservationOverlap},
		{"晚数为零", Request{RoomNumber: "25", GuestName: "Bia", StartDate: "2026-03-10", Nights: 0}, errors.ErrInvalidNights},
		{"缺少客人", Request{RoomNumber: "25", StartDate: "2026-03-10", Nights: 1}, errors.ErrGuestNameRequired},
		{"房间不存在", Request{RoomNumber: "99", GuestName: "Bia", StartDate: "2026-03-10", Nights: 1}, errors.ErrRoomNotFound},
		{"日期无效", Request{RoomNumber: "25", GuestName: "Bia", StartDate: "10/03", Nights: 1}, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(ctx, &req, "Recepção")
			assert.True(t, errors.IsCode(err, tt.want), err)
		})
	}

	// 退房日当天可接下一单
	_, err = svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Bia", StartDate: "2026-03-06", Nights: 1}, "Recepção")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &Request{RoomNumber: "26", GuestName: "Caio", StartDate: "2026-03-03", Nights: 2}, "Recepção")
	require.NoError(t, err)

	var log models.ActivityLog
	require.NoError(t, svc.db.Where("action = ?", audit.ActionReservationCreated).First(&log).Error)
	assert.Equal(t, "Nova reserva criada para Ana no quarto 25", log.Description)
}

func TestReservationService_UpdateExcludesItself(t *testing.T) {
	svc := setupTestReservationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Ana", StartDate: "2026-03-02", Nights: 4}, "x")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Bia", StartDate: "2026-03-08", Nights: 2}, "x")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, r.ID, &Request{RoomNumber: "25", GuestName: "Ana Paula", StartDate: "2026-03-03", Nights: 5}, "x")
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", updated.GuestName)

	_, err = svc.Update(ctx, r.ID, &Request{RoomNumber: "25", GuestName: "Ana", StartDate: "2026-03-03", Nights: 6}, "x")
	assert.True(t, errors.IsCode(err, errors.ErrReservationOverlap))

	moved, err := svc.Update(ctx, r.ID, &Request{RoomNumber: "27", GuestName: "Ana", StartDate: "2026-03-08", Nights: 2}, "x")
	require.NoError(t, err)
	assert.Equal(t, "27", moved.RoomNumber)

	_, err = svc.Update(ctx, 999, &Request{RoomNumber: "25", GuestName: "x", StartDate: "2026-03-03", Nights: 1}, "x")
	assert.True(t, errors.IsCode(err, errors.ErrReservationNotFound))
}

func TestReservationService_ListAndDelete(t *testing.T) {
	svc := setupTestReservationService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, &Request{RoomNumber: "26", GuestName: "Ana", StartDate: "2026-03-02", Nights: 2}, "x")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Bia", StartDate: "2026-03-05", Nights: 2}, "x")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &Request{RoomNumber: "25", GuestName: "Caio", StartDate: "2026-04-01", Nights: 2}, "x")
	require.NoError(t, err)

	from, _ := ParseDate("2026-03-01")
	to, _ := ParseDate("2026-03-31")
	list, err := svc.List(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bia", list[0].GuestName)

	_, err = svc.List(ctx, to, from)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParams))

	require.NoError(t, svc.Delete(ctx, a.ID, "x"))
	assert.True(t, errors.IsCode(svc.Delete(ctx, a.ID, "x"), errors.ErrReservationNotFound))

	var log models.ActivityLog
	require.NoError(t, svc.db.Where("action = ?", audit.ActionReservationDeleted).First(&log).Error)
	assert.Equal(t, "Reserva de Ana no quarto 26 removida.", log.Description)
}

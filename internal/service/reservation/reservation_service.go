// Package reservation 提供预订日历服务
// 预订只占用日历，不改变房态，入住仍走前台登记
package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

// DateLayout 预订日期格式
const DateLayout = "2006-01-02"

// RoomLookup 按房号查房
type RoomLookup interface {
	GetByNumber(ctx context.Context, number string) (*models.Room, error)
}

// Request 新增或修改预订
type Request struct {
	RoomNumber string `json:"room_number" binding:"required"`
	GuestName  string `json:"guest_name" binding:"required"`
	Phone      string `json:"phone"`
	StartDate  string `json:"start_date" binding:"required"`
	Nights     int    `json:"nights"`
}

// ReservationService 预订服务
type ReservationService struct {
	repo  *repository.ReservationRepository
	rooms RoomLookup
	audit audit.Recorder
}

// NewReservationService 创建预订服务
func NewReservationService(repo *repository.ReservationRepository, rooms RoomLookup, recorder audit.Recorder) *ReservationService {
	return &ReservationService{repo: repo, rooms: rooms, audit: recorder}
}

// ParseDate 按 UTC 解析日期，预订只关心日
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// build 校验请求并填充预订，excludeID 为修改时的自身 ID
func (s *ReservationService) build(ctx context.Context, req *Request, target *models.Reservation, excludeID int64) error {
	guest := strings.TrimSpace(req.GuestName)
	number := strings.TrimSpace(req.RoomNumber)
	if guest == "" {
		return errors.ErrGuestNameRequired
	}
	if number == "" {
		return errors.ErrInvalidParams.WithMessage("请填写房号")
	}
	if req.Nights < 1 {
		return errors.ErrInvalidNights
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return errors.ErrInvalidParams.WithMessage("入住日期格式无效")
	}

	room, err := s.rooms.GetByNumber(ctx, number)
	if err != nil {
		return err
	}

	end := start.AddDate(0, 0, req.Nights)
	overlap, err := s.repo.HasOverlap(ctx, room.ID, start, end, excludeID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if overlap {
		return errors.ErrReservationOverlap
	}

	target.RoomID = room.ID
	target.RoomNumber = room.Number
	target.GuestName = guest
	target.Phone = strings.TrimSpace(req.Phone)
	target.StartDate = start
	target.EndDate = end
	target.Nights = req.Nights
	return nil
}

// Create 新增预订
func (s *ReservationService) Create(ctx context.Context, req *Request, actor string) (*models.Reservation, error) {
	r := &models.Reservation{CreatedBy: actor}
	if err := s.build(ctx, req, r, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityReservation,
		Action:      audit.ActionReservationCreated,
		Description: fmt.Sprintf("Nova reserva criada para %s no quarto %s", r.GuestName, r.RoomNumber),
		Actor:       actor,
		Details:     models.JSON{"start_date": r.StartDate.Format(DateLayout), "nights": r.Nights},
	})
	return r, nil
}

func (s *ReservationService) get(ctx context.Context, id int64) (*models.Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return r, nil
}

// Update 修改预订
func (s *ReservationService) Update(ctx context.Context, id int64, req *Request, actor string) (*models.Reservation, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.build(ctx, req, r, r.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityReservation,
		Action:      audit.ActionReservationUpdated,
		Description: fmt.Sprintf("Reserva atualizada para %s no quarto %s", r.GuestName, r.RoomNumber),
		Actor:       actor,
	})
	return r, nil
}

// Delete 删除预订
func (s *ReservationService) Delete(ctx context.Context, id int64, actor string) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityReservation,
		Action:      audit.ActionReservationDeleted,
		Description: fmt.Sprintf("Reserva de %s no quarto %s removida.", r.GuestName, r.RoomNumber),
		Actor:       actor,
	})
	return nil
}

// List 与 [from, to) 相交的预订，按房间、开始日期排序
func (s *ReservationService) List(ctx context.Context, from, to time.Time) ([]*models.Reservation, error) {
	if !to.After(from) {
		return nil, errors.ErrInvalidParams.WithMessage("结束日期必须晚于开始日期")
	}
	list, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

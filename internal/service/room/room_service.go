// Package room 提供客房登记服务
package room

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// RoomView 房态看板上的一间房
// GuestName 由在住记录推导，只有在住房间才有
type RoomView struct {
	*models.Room
	GuestName string `json:"guest_name,omitempty"`
	Ringing   bool   `json:"ringing"`
}

// RingingLookup 查询正在响铃的房间
type RingingLookup interface {
	RingingRooms(ctx context.Context) (map[int64]bool, error)
}

// RoomService 客房登记服务
type RoomService struct {
	roomRepo *repository.RoomRepository
	stayRepo *repository.StayRepository
	floors   []config.FloorRange
	seed     map[string]string
	ringing  RingingLookup
	log      *zap.Logger
}

// NewRoomService 创建客房登记服务
func NewRoomService(
	roomRepo *repository.RoomRepository,
	stayRepo *repository.StayRepository,
	cfg *config.FrontDeskConfig,
) *RoomService {
	floors := cfg.Floors
	if len(floors) == 0 {
		floors = config.DefaultFloors()
	}
	return &RoomService{
		roomRepo: roomRepo,
		stayRepo: stayRepo,
		floors:   floors,
		seed:     cfg.SeedStatuses,
		log:      logger.Named("room"),
	}
}

// SetRingingLookup 注入响铃查询（叫醒服务依赖客房服务，只能事后注入）
func (s *RoomService) SetRingingLookup(l RingingLookup) {
	s.ringing = l
}

// BedTypeFor 按房型和房号奇偶确定床型
func BedTypeFor(category string, number int) string {
	even := number%2 == 0
	switch category {
	case models.RoomCategoryStandard:
		if even {
			return models.BedTypeDouble
		}
		return models.BedTypeTwin
	case models.RoomCategoryLuxury:
		if even {
			return models.BedTypeDouble
		}
		return models.BedTypeTriple
	default:
		return models.BedTypeDouble
	}
}

// GenerateRooms 按楼层表生成房间，seed 可覆盖初始房态
func GenerateRooms(floors []config.FloorRange, seed map[string]string) ([]*models.Room, error) {
	for number, status := range seed {
		if !models.IsValidRoomStatus(status) {
			return nil, errors.ErrInvalidRoomStatus.WithMessage(fmt.Sprintf("房间 %s 的初始房态无效: %s", number, status))
		}
		// 在住必须有入住记录，初始化时无法满足
		if status == models.RoomStatusOccupied {
			return nil, errors.ErrInvalidRoomStatus.WithMessage(fmt.Sprintf("房间 %s 不能初始化为在住", number))
		}
	}

	var rooms []*models.Room
	for i, f := range floors {
		if f.From > f.To {
			return nil, errors.ErrInvalidParams.WithMessage(fmt.Sprintf("楼层 %s 房号范围无效", f.Name))
		}
		for n := f.From; n <= f.To; n++ {
			number := strconv.Itoa(n)
			status := models.RoomStatusAvailable
			if st, ok := seed[number]; ok {
				status = st
			}
			rooms = append(rooms, &models.Room{
				Number:    number,
				Floor:     i + 1,
				FloorName: f.Name,
				Category:  f.Category,
				BedType:   BedTypeFor(f.Category, n),
				BaseRate:  decimal.NewFromFloat(f.BaseRate).Round(2),
				Status:    status,
			})
		}
	}
	return rooms, nil
}

// Generate 房间表为空时按楼层表初始化，返回新建数量
func (s *RoomService) Generate(ctx context.Context) (int, error) {
	count, err := s.roomRepo.Count(ctx)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	if count > 0 {
		return 0, nil
	}

	rooms, err := GenerateRooms(s.floors, s.seed)
	if err != nil {
		return 0, err
	}
	if err := s.roomRepo.CreateBatch(ctx, rooms); err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}

	s.log.Info("rooms generated", zap.Int("count", len(rooms)))
	return len(rooms), nil
}

// List 房态看板
func (s *RoomService) List(ctx context.Context, filter *repository.RoomFilter) ([]*RoomView, error) {
	rooms, err := s.roomRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	guests, err := s.stayRepo.GuestNames(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	ringing := s.ringingRooms(ctx)

	views := make([]*RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, &RoomView{
			Room:      r,
			GuestName: guests[r.ID],
			Ringing:   ringing[r.ID],
		})
	}
	return views, nil
}

// ringingRooms 响铃集合不可用时看板照常展示
func (s *RoomService) ringingRooms(ctx context.Context) map[int64]bool {
	if s.ringing == nil {
		return nil
	}
	ringing, err := s.ringing.RingingRooms(ctx)
	if err != nil {
		s.log.Warn("load ringing rooms failed", zap.Error(err))
		return nil
	}
	return ringing
}

// Get 获取单个房间
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	r, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return r, nil
}

// GetView 获取单个房间的看板视图
func (s *RoomService) GetView(ctx context.Context, id int64) (*RoomView, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &RoomView{Room: r, Ringing: s.ringingRooms(ctx)[r.ID]}
	if r.Status == models.RoomStatusOccupied {
		stay, err := s.stayRepo.GetByRoomID(ctx, r.ID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if stay != nil {
			view.GuestName = stay.GuestName
		}
	}
	return view, nil
}

// GetByNumber 按房号获取房间
func (s *RoomService) GetByNumber(ctx context.Context, number string) (*models.Room, error) {
	r, err := s.roomRepo.GetByNumber(ctx, number)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return r, nil
}

// SetStatus 直接写入房态，不做流转校验
// 只应由生命周期控制器和维修工单调用
func (s *RoomService) SetStatus(ctx context.Context, id int64, status string) error {
	if !models.IsValidRoomStatus(status) {
		return errors.ErrInvalidRoomStatus
	}
	if err := s.roomRepo.UpdateStatus(ctx, id, status); err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// CountByStatus 按房态统计，缺失的房态补零
func (s *RoomService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.roomRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	for _, st := range []string{
		models.RoomStatusAvailable,
		models.RoomStatusOccupied,
		models.RoomStatusDirty,
		models.RoomStatusMaintenance,
		models.RoomStatusBlocked,
	} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

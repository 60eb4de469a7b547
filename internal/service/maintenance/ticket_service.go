// Package maintenance 提供维修工单服务
package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

// RoomDirectory 工单需要的客房操作
type RoomDirectory interface {
	Get(ctx context.Context, id int64) (*models.Room, error)
	GetByNumber(ctx context.Context, number string) (*models.Room, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

// CreateTicketRequest 报修请求
type CreateTicketRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
	Issue      string `json:"issue" binding:"required"`
	Priority   string `json:"priority"`
	Technician string `json:"technician"`
}

// TicketService 维修工单服务
type TicketService struct {
	repo  *repository.TicketRepository
	rooms RoomDirectory
	tx    *database.Transactor
	audit audit.Recorder
	now   func() time.Time
	log   *zap.Logger
}

// NewTicketService 创建维修工单服务
func NewTicketService(
	repo *repository.TicketRepository,
	rooms RoomDirectory,
	tx *database.Transactor,
	recorder audit.Recorder,
) *TicketService {
	return &TicketService{
		repo:  repo,
		rooms: rooms,
		tx:    tx,
		audit: recorder,
		now:   time.Now,
		log:   logger.Named("maintenance"),
	}
}

// Create 登记工单并把房间置为维修中
// 在住房间保持在住，封房保持封房
func (s *TicketService) Create(ctx context.Context, req *CreateTicketRequest, actor string) (*models.MaintenanceTicket, error) {
	number := strings.TrimSpace(req.RoomNumber)
	issue := strings.TrimSpace(req.Issue)
	if number == "" {
		return nil, errors.ErrTicketRoomRequired
	}
	if issue == "" {
		return nil, errors.ErrIssueRequired
	}
	priority := req.Priority
	if priority == "" {
		priority = models.TicketPriorityMedium
	}
	if !models.IsValidTicketPriority(priority) {
		return nil, errors.ErrInvalidPriority
	}

	room, err := s.rooms.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	ticket := &models.MaintenanceTicket{
		RoomID:     room.ID,
		RoomNumber: room.Number,
		Issue:      issue,
		Priority:   priority,
		Status:     models.TicketStatusPending,
		Technician: strings.TrimSpace(req.Technician),
		CreatedBy:  actor,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ticket); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		switch room.Status {
		case models.RoomStatusOccupied, models.RoomStatusBlocked:
			return nil
		}
		return s.rooms.SetStatus(ctx, room.ID, models.RoomStatusMaintenance)
	})
	if err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordTicketEvent("opened", priority)
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityMaintenance,
		Action:      audit.ActionTicketOpened,
		Description: fmt.Sprintf("Manutenção registrada para o quarto %s. Motivo: %s", room.Number, issue),
		Actor:       actor,
		Details:     models.JSON{"ticket_id": ticket.ID, "priority": priority},
	})
	return ticket, nil
}

func (s *TicketService) get(ctx context.Context, id int64) (*models.MaintenanceTicket, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrTicketNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return t, nil
}

// Start 工单开始处理
func (s *TicketService) Start(ctx context.Context, id int64, technician string) (*models.MaintenanceTicket, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TicketStatusPending {
		return nil, errors.ErrTicketStatusError
	}
	t.Status = models.TicketStatusInProgress
	if technician = strings.TrimSpace(technician); technician != "" {
		t.Technician = technician
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	metrics.GetMetrics().RecordTicketEvent("started", t.Priority)
	return t, nil
}

// Resolve 完成工单并把房间置为待清洁
// 房间不存在时工单照常完成
func (s *TicketService) Resolve(ctx context.Context, id int64, actor string) (*models.MaintenanceTicket, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TicketStatusDone {
		return nil, errors.ErrTicketStatusError
	}
	if err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.close(ctx, t, actor); err != nil {
			return err
		}
		return s.syncRoom(ctx, t)
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// ResolveFirstOpen 完成房间最早的未完成工单，没有时返回 nil
// 房态由调用方负责
func (s *TicketService) ResolveFirstOpen(ctx context.Context, roomID int64, actor string) (*models.MaintenanceTicket, error) {
	t, err := s.repo.FirstOpenForRoom(ctx, roomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.close(ctx, t, actor); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) close(ctx context.Context, t *models.MaintenanceTicket, actor string) error {
	now := s.now()
	t.Status = models.TicketStatusDone
	t.ResolvedAt = &now
	if err := s.repo.Update(ctx, t); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	metrics.GetMetrics().RecordTicketEvent("resolved", t.Priority)
	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityMaintenance,
		Action:      audit.ActionTicketClosed,
		Description: fmt.Sprintf("Chamado #%d do quarto %s concluído", t.ID, t.RoomNumber),
		Actor:       actor,
		Details:     models.JSON{"ticket_id": t.ID},
	})
	return nil
}

// syncRoom 维修完成后房间需要清洁；在住和封房不受影响
func (s *TicketService) syncRoom(ctx context.Context, t *models.MaintenanceTicket) error {
	room, err := s.rooms.Get(ctx, t.RoomID)
	if err != nil {
		if errors.IsCode(err, errors.ErrRoomNotFound) {
			s.log.Warn("ticket room missing, skip room sync", logger.TicketID(t.ID), logger.RoomNumber(t.RoomNumber))
			return nil
		}
		return err
	}
	switch room.Status {
	case models.RoomStatusOccupied, models.RoomStatusBlocked:
		return nil
	}
	return s.rooms.SetStatus(ctx, room.ID, models.RoomStatusDirty)
}

// TicketListFilter 工单列表条件
type TicketListFilter struct {
	RoomNumber string `form:"room_number"`
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	View       string `form:"view"` // active / history
}

// List 工单列表
func (s *TicketService) List(ctx context.Context, f *TicketListFilter) ([]*models.MaintenanceTicket, error) {
	filter := &repository.TicketFilter{}
	if f != nil {
		filter.Status = f.Status
		filter.Priority = f.Priority
		filter.Active = f.View == "active"
		filter.History = f.View == "history"
		if f.RoomNumber != "" {
			room, err := s.rooms.GetByNumber(ctx, f.RoomNumber)
			if err != nil {
				return nil, err
			}
			filter.RoomID = &room.ID
		}
	}
	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return tickets, nil
}

// ListActive 未完成工单
func (s *TicketService) ListActive(ctx context.Context) ([]*models.MaintenanceTicket, error) {
	return s.List(ctx, &TicketListFilter{View: "active"})
}

// Counts 按状态统计
func (s *TicketService) Counts(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	for _, st := range []string{models.TicketStatusPending, models.TicketStatusInProgress, models.TicketStatusDone} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

// FirstOpenForRoom 房间最早的未完成工单
func (s *TicketService) FirstOpenForRoom(ctx context.Context, roomID int64) (*models.MaintenanceTicket, error) {
	t, err := s.repo.FirstOpenForRoom(ctx, roomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrTicketNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return t, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// TicketRepository 维修工单仓储
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository 创建维修工单仓储
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create 创建工单
func (r *TicketRepository) Create(ctx context.Context, ticket *models.MaintenanceTicket) error {
	return database.Conn(ctx, r.db).Create(ticket).Error
}

// GetByID 根据 ID 获取工单
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	if err := database.Conn(ctx, r.db).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Update 保存工单
func (r *TicketRepository) Update(ctx context.Context, ticket *models.MaintenanceTicket) error {
	return database.Conn(ctx, r.db).Save(ticket).Error
}

// TicketFilter 工单查询条件
type TicketFilter struct {
	RoomID   *int64
	Status   string
	Priority string
	// Active 为 true 时只返回未完成工单，为 false 且 History 为 true 时只返回已完成工单
	Active  bool
	History bool
}

// List 获取工单列表，新工单在前
func (r *TicketRepository) List(ctx context.Context, filter *TicketFilter) ([]*models.MaintenanceTicket, error) {
	var tickets []*models.MaintenanceTicket
	query := database.Conn(ctx, r.db).Model(&models.MaintenanceTicket{})

	if filter != nil {
		if filter.RoomID != nil {
			query = query.Where("room_id = ?", *filter.RoomID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			query = query.Where("priority = ?", filter.Priority)
		}
		if filter.Active {
			query = query.Where("status <> ?", models.TicketStatusDone)
		} else if filter.History {
			query = query.Where("status = ?", models.TicketStatusDone)
		}
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&tickets).Error
	return tickets, err
}

// FirstOpenForRoom 获取房间最早的未完成工单
func (r *TicketRepository) FirstOpenForRoom(ctx context.Context, roomID int64) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	err := database.Conn(ctx, r.db).
		Where("room_id = ? AND status <> ?", roomID, models.TicketStatusDone).
		Order("id ASC").
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CountByStatus 按状态统计工单
func (r *TicketRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := database.Conn(ctx, r.db).Model(&models.MaintenanceTicket{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

package models

import "time"

// MaintenanceTicket 维修工单
// 通过 RoomID 绑定房间，RoomNumber 仅作展示
type MaintenanceTicket struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     int64      `gorm:"index;not null" json:"room_id"`
	RoomNumber string     `gorm:"type:varchar(10);not null" json:"room_number"`
	Issue      string     `gorm:"type:text;not null" json:"issue"`
	Priority   string     `gorm:"type:varchar(10);not null" json:"priority"`
	Status     string     `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	Technician string     `gorm:"type:varchar(100)" json:"technician"`
	CreatedBy  string     `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// TableName 表名
func (MaintenanceTicket) TableName() string {
	return "maintenance_tickets"
}

// TicketPriority 工单优先级
const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
)

// TicketStatus 工单状态，只能单向推进
const (
	TicketStatusPending    = "pending"
	TicketStatusInProgress = "in_progress"
	TicketStatusDone       = "done"
)

// IsValidTicketPriority 校验优先级
func IsValidTicketPriority(p string) bool {
	return p == TicketPriorityLow || p == TicketPriorityMedium || p == TicketPriorityHigh
}

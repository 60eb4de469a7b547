package models

import "time"

// ActivityLog 操作审计记录
type ActivityLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string    `gorm:"type:varchar(20);index;not null" json:"type"`
	Action      string    `gorm:"type:varchar(50);not null" json:"action"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Actor       string    `gorm:"type:varchar(100);not null" json:"actor"`
	Details     JSON      `gorm:"type:text" json:"details,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// ActivityType 审计类型
const (
	ActivityCheckIn     = "CHECK_IN"
	ActivityCheckOut    = "CHECK_OUT"
	ActivityReservation = "RESERVATION"
	ActivityMaintenance = "MAINTENANCE"
	ActivityCleaning    = "CLEANING"
	ActivityFinancial   = "FINANCIAL"
	ActivitySystem      = "SYSTEM"
	ActivityAccess      = "ACCESS"
)

// SystemActor 系统自动操作的执行人
const SystemActor = "Sistema"

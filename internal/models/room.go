package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room 客房模型
// 房间只在初始化时按楼层表生成，之后不会删除
type Room struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Number    string          `gorm:"type:varchar(10);uniqueIndex;not null" json:"number"`
	Floor     int             `gorm:"not null" json:"floor"`
	FloorName string          `gorm:"type:varchar(30)" json:"floor_name"`
	Category  string          `gorm:"type:varchar(20);not null" json:"category"`
	BedType   string          `gorm:"type:varchar(20);not null" json:"bed_type"`
	BaseRate  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_rate"`
	Status    string          `gorm:"type:varchar(20);index;not null;default:available" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// RoomStatus 房态
const (
	RoomStatusAvailable   = "available"   // 空房
	RoomStatusOccupied    = "occupied"    // 在住
	RoomStatusDirty       = "dirty"       // 待清洁
	RoomStatusMaintenance = "maintenance" // 维修中
	RoomStatusBlocked     = "blocked"     // 封房
)

// RoomCategory 房型
const (
	RoomCategoryStandard = "standard" // 标准
	RoomCategoryLuxury   = "luxury"   // 豪华
	RoomCategoryMaster   = "master"   // 主套
)

// BedType 床型
const (
	BedTypeDouble = "double" // 大床
	BedTypeTwin   = "twin"   // 双床
	BedTypeTriple = "triple" // 三床
)

// IsValidRoomStatus 校验房态取值
func IsValidRoomStatus(status string) bool {
	switch status {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusDirty, RoomStatusMaintenance, RoomStatusBlocked:
		return true
	}
	return false
}

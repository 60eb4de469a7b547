package models

import "time"

// Employee 员工
type Employee struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(100)" json:"email"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(30);index;not null" json:"role"`
	Status       int8       `gorm:"type:smallint;not null;default:1" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Employee) TableName() string {
	return "employees"
}

// EmployeeRole 员工角色
const (
	RoleHousekeeper  = "housekeeper"  // 客房清洁
	RoleReceptionist = "receptionist" // 前台
	RoleMaintenance  = "maintenance"  // 维修
	RoleManager      = "manager"      // 经理
	RoleAdmin        = "admin"        // 管理员
	RoleMasterAdmin  = "master_admin" // 超级管理员
)

// EmployeeStatus 员工状态
const (
	EmployeeStatusDisabled = 0
	EmployeeStatusActive   = 1
)

// IsValidRole 校验角色
func IsValidRole(role string) bool {
	switch role {
	case RoleHousekeeper, RoleReceptionist, RoleMaintenance, RoleManager, RoleAdmin, RoleMasterAdmin:
		return true
	}
	return false
}

// CanOperateCashier 是否可以操作收银
func (e *Employee) CanOperateCashier() bool {
	switch e.Role {
	case RoleReceptionist, RoleManager, RoleAdmin, RoleMasterAdmin:
		return e.Status == EmployeeStatusActive
	}
	return false
}

// IsHousekeeper 是否为在职清洁员
func (e *Employee) IsHousekeeper() bool {
	return e.Role == RoleHousekeeper && e.Status == EmployeeStatusActive
}

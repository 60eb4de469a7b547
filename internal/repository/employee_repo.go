package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	return database.Conn(ctx, r.db).Create(e).Error
}

// GetByID 根据 ID 获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	if err := database.Conn(ctx, r.db).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByUsername 根据用户名获取员工
func (r *EmployeeRepository) GetByUsername(ctx context.Context, username string) (*models.Employee, error) {
	var e models.Employee
	if err := database.Conn(ctx, r.db).Where("username = ?", username).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ExistsByUsername 用户名是否已存在
func (r *EmployeeRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Employee{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// List 获取员工列表，可按角色过滤
func (r *EmployeeRepository) List(ctx context.Context, role string) ([]*models.Employee, error) {
	var list []*models.Employee
	query := database.Conn(ctx, r.db).Model(&models.Employee{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}

// Count 员工总数
func (r *EmployeeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&models.Employee{}).Count(&n).Error
	return n, err
}

// UpdateStatus 更新员工状态
func (r *EmployeeRepository) UpdateStatus(ctx context.Context, id int64, status int8) error {
	return database.Conn(ctx, r.db).Model(&models.Employee{}).Where("id = ?", id).Update("status", status).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *EmployeeRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return database.Conn(ctx, r.db).Model(&models.Employee{}).Where("id = ?", id).Update("last_login_at", at).Error
}

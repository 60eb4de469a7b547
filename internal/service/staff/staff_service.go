// Package staff 提供员工目录与登录服务
package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
)

const minPasswordLength = 6

// StaffService 员工服务
type StaffService struct {
	repo       *repository.EmployeeRepository
	jwtManager *jwt.Manager
	audit      audit.Recorder
	bcryptCost int
	now        func() time.Time
	log        *zap.Logger
}

// NewStaffService 创建员工服务
func NewStaffService(repo *repository.EmployeeRepository, jwtManager *jwt.Manager, recorder audit.Recorder, bcryptCost int) *StaffService {
	return &StaffService{
		repo:       repo,
		jwtManager: jwtManager,
		audit:      recorder,
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        logger.Named("staff"),
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Staff *models.Employee `json:"staff"`
	Token *jwt.TokenPair   `json:"token"`
}

// Login 员工登录
func (s *StaffService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	e, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !crypto.VerifyPassword(password, e.PasswordHash) {
		return nil, errors.ErrPasswordError
	}
	if e.Status != models.EmployeeStatusActive {
		return nil, errors.ErrAccountDisabled
	}

	pair, err := s.jwtManager.GenerateTokenPair(jwt.Identity{
		StaffID:  e.ID,
		Username: e.Username,
		Name:     e.Name,
		Role:     e.Role,
	})
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, e.ID, now); err != nil {
		s.log.Warn("update last login failed", logger.StaffID(e.ID), zap.Error(err))
	}
	e.LastLoginAt = &now

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivityAccess,
		Action:      audit.ActionLogin,
		Description: fmt.Sprintf("Login realizado por %s", e.Name),
		Actor:       e.Name,
	})
	return &LoginResult{Staff: e, Token: pair}, nil
}

// CreateRequest 新增员工
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (r *CreateRequest) validate() error {
	r.Name = utils.CollapseSpaces(r.Name)
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	switch {
	case r.Name == "" || r.Username == "":
		return errors.ErrInvalidParams.WithMessage("请填写姓名和用户名")
	case len(r.Password) < minPasswordLength:
		return errors.ErrInvalidParams.WithMessage("密码至少6位")
	case !models.IsValidRole(r.Role):
		return errors.ErrInvalidParams.WithMessage("无效的角色")
	case r.Email != "" && !utils.ValidateEmail(r.Email):
		return errors.ErrInvalidParams.WithMessage("邮箱格式不正确")
	case r.Phone != "" && !utils.ValidatePhone(r.Phone):
		return errors.ErrInvalidParams.WithMessage("电话格式不正确")
	}
	return nil
}

// Create 新增员工
func (s *StaffService) Create(ctx context.Context, req *CreateRequest, actor string) (*models.Employee, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrStaffExists
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	e := &models.Employee{
		Name:         req.Name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       models.EmployeeStatusActive,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.audit.Append(ctx, audit.Entry{
		Type:        models.ActivitySystem,
		Action:      audit.ActionEmployeeCreated,
		Description: fmt.Sprintf("Funcionário %s cadastrado (%s)", e.Name, e.Role),
		Actor:       actor,
	})
	return e, nil
}

// List 员工列表，role 为空时返回全部
func (s *StaffService) List(ctx context.Context, role string) ([]*models.Employee, error) {
	list, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// Get 获取员工
func (s *StaffService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrStaffNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return e, nil
}

// SetStatus 启用或停用员工
func (s *StaffService) SetStatus(ctx context.Context, id int64, active bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	status := int8(models.EmployeeStatusDisabled)
	if active {
		status = models.EmployeeStatusActive
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// IsHousekeeper 是否为在职清洁员
func (s *StaffService) IsHousekeeper(ctx context.Context, id int64) (bool, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrStaffNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.IsHousekeeper(), nil
}

// Housekeeper 获取在职清洁员
func (s *StaffService) Housekeeper(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrStaffNotFound) {
			return nil, errors.ErrNotHousekeeper
		}
		return nil, err
	}
	if !e.IsHousekeeper() {
		return nil, errors.ErrNotHousekeeper
	}
	return e, nil
}

// Operator 获取可操作收银的员工
func (s *StaffService) Operator(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.CanOperateCashier() {
		return nil, errors.ErrNotOperator
	}
	return e, nil
}

// Bootstrap 员工表为空时创建初始管理员，返回是否创建
func (s *StaffService) Bootstrap(ctx context.Context, cfg *config.BootstrapConfig) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, errors.ErrDatabaseError.WithError(err)
	}
	if n > 0 || cfg.AdminUsername == "" {
		return false, nil
	}

	name := cfg.AdminName
	if name == "" {
		name = "Administrador"
	}
	_, err = s.Create(ctx, &CreateRequest{
		Name:     name,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     models.RoleMasterAdmin,
	}, models.SystemActor)
	if err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("username", cfg.AdminUsername))
	return true, nil
}

package staff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

type testStaffService struct {
	*StaffService
	db  *gorm.DB
	jwt *jwt.Manager
}

func setupTestStaffService(t *testing.T) *testStaffService {
	db := testutil.NewDB(t)
	manager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "frontdesk-test",
	})
	svc := NewStaffService(
		repository.NewEmployeeRepository(db),
		manager,
		audit.NewActivityService(repository.NewActivityRepository(db), nil),
		bcrypt.MinCost,
	)
	return &testStaffService{StaffService: svc, db: db, jwt: manager}
}

func (s *testStaffService) create(t *testing.T, username, role string) *models.Employee {
	t.Helper()
	e, err := s.Create(context.Background(), &CreateRequest{
		Name:     "  " + username + "  Silva ",
		Username: username,
		Password: "secret1",
		Role:     role,
	}, "admin")
	require.NoError(t, err)
	return e
}

func TestStaffService_CreateAndLogin(t *testing.T) {
	svc := setupTestStaffService(t)
	ctx := context.Background()

	e := svc.create(t, "Carla", models.RoleReceptionist)
	assert.Equal(t, "carla", e.Username)
	assert.Equal(t, "Carla Silva", e.Name)
	assert.NotEqual(t, "secret1", e.PasswordHash)

	result, err := svc.Login(ctx, "carla", "secret1")
	require.NoError(t, err)
	assert.NotNil(t, result.Staff.LastLoginAt)

	claims, err := svc.jwt.ParseAccessToken(result.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, e.ID, claims.StaffID)
	assert.Equal(t, models.RoleReceptionist, claims.Role)

	var log models.ActivityLog
	require.NoError(t, svc.db.Where("action = ?", audit.ActionLogin).First(&log).Error)
	assert.Equal(t, models.ActivityAccess, log.Type)
}

func TestStaffService_LoginFailures(t *testing.T) {
	svc := setupTestStaffService(t)
	ctx := context.Background()
	e := svc.create(t, "carla", models.RoleReceptionist)

	_, err := svc.Login(ctx, "carla", "wrong")
	assert.True(t, errors.IsCode(err, errors.ErrPasswordError))

	_, err = svc.Login(ctx, "ghost", "secret1")
	assert.True(t, errors.IsCode(err, errors.ErrPasswordError))

	require.NoError(t, svc.SetStatus(ctx, e.ID, false))
	_, err = svc.Login(ctx, "carla", "secret1")
	assert.True(t, errors.IsCode(err, errors.ErrAccountDisabled))
}

func TestStaffService_CreateValidation(t *testing.T) {
	svc := setupTestStaffService(t)
	ctx := context.Background()
	svc.create(t, "carla", models.RoleReceptionist)

	tests := []struct {
		name string
		req  CreateRequest
		want *errors.AppError
	}{
		{"用户名重复", CreateRequest{Name: "C", Username: "CARLA", Password: "secret1", Role: models.RoleManager}, errors.ErrStaffExists},
		{"密码过短", CreateRequest{Name: "D", Username: "d", Password: "123", Role: models.RoleManager}, errors.ErrInvalidParams},
		{"角色无效", CreateRequest{Name: "D", Username: "d", Password: "secret1", Role: "chef"}, errors.ErrInvalidParams},
		{"邮箱无效", CreateRequest{Name: "D", Username: "d", Password: "secret1", Role: models.RoleManager, Email: "x@"}, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(ctx, &req, "admin")
			assert.True(t, errors.IsCode(err, tt.want), err)
		})
	}
}

func TestStaffService_HousekeeperAndOperator(t *testing.T) {
	svc := setupTestStaffService(t)
	ctx := context.Background()
	maria := svc.create(t, "maria", models.RoleHousekeeper)
	joao := svc.create(t, "joao", models.RoleReceptionist)

	ok, err := svc.IsHousekeeper(ctx, maria.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsHousekeeper(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Housekeeper(ctx, joao.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotHousekeeper))

	_, err = svc.Operator(ctx, maria.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotOperator))
	op, err := svc.Operator(ctx, joao.ID)
	require.NoError(t, err)
	assert.Equal(t, joao.ID, op.ID)

	require.NoError(t, svc.SetStatus(ctx, maria.ID, false))
	_, err = svc.Housekeeper(ctx, maria.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotHousekeeper))

	list, err := svc.List(ctx, models.RoleHousekeeper)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStaffService_Bootstrap(t *testing.T) {
	svc := setupTestStaffService(t)
	ctx := context.Background()
	cfg := &config.BootstrapConfig{AdminUsername: "admin", AdminPassword: "admin123"}

	created, err := svc.Bootstrap(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Bootstrap(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	result, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMasterAdmin, result.Staff.Role)
	assert.Equal(t, "Administrador", result.Staff.Name)
}

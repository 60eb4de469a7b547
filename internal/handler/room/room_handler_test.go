package room

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/lifecycle"
	roomService "github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试替身 ====================

type mockRooms struct{ mock.Mock }

func (m *mockRooms) List(ctx context.Context, f *repository.RoomFilter) ([]*roomService.RoomView, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*roomService.RoomView), args.Error(1)
}

func (m *mockRooms) GetView(ctx context.Context, id int64) (*roomService.RoomView, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*roomService.RoomView)
	return v, args.Error(1)
}

func (m *mockRooms) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

type mockLifecycle struct{ mock.Mock }

func (m *mockLifecycle) SelectRoom(ctx context.Context, id int64) (*lifecycle.Workflow, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*lifecycle.Workflow)
	return w, args.Error(1)
}

func (m *mockLifecycle) CheckIn(ctx context.Context, id int64, c stay.Contract, actor string) (*models.Stay, error) {
	args := m.Called(ctx, id, c, actor)
	s, _ := args.Get(0).(*models.Stay)
	return s, args.Error(1)
}

func (m *mockLifecycle) Checkout(ctx context.Context, id int64, actor string) (*stay.Statement, error) {
	args := m.Called(ctx, id, actor)
	s, _ := args.Get(0).(*stay.Statement)
	return s, args.Error(1)
}

func (m *mockLifecycle) ConfirmCleaning(ctx context.Context, id, housekeeperID int64, actor string) (*models.Room, error) {
	args := m.Called(ctx, id, housekeeperID, actor)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockLifecycle) ResolveMaintenance(ctx context.Context, id int64, actor string) (*models.Room, error) {
	args := m.Called(ctx, id, actor)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockLifecycle) Block(ctx context.Context, id int64, actor string) (*models.Room, error) {
	args := m.Called(ctx, id, actor)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

func (m *mockLifecycle) Unblock(ctx context.Context, id int64, actor string) (*models.Room, error) {
	args := m.Called(ctx, id, actor)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Statement(ctx context.Context, id int64) (*stay.Statement, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*stay.Statement)
	return s, args.Error(1)
}

func (m *mockLedger) UpdateStay(ctx context.Context, id int64, p stay.Patch) (*stay.Statement, error) {
	args := m.Called(ctx, id, p)
	s, _ := args.Get(0).(*stay.Statement)
	return s, args.Error(1)
}

func (m *mockLedger) AddConsumption(ctx context.Context, id int64, item string, price decimal.Decimal, qty int) (*models.ConsumptionItem, error) {
	args := m.Called(ctx, id, item, price.StringFixed(2), qty)
	i, _ := args.Get(0).(*models.ConsumptionItem)
	return i, args.Error(1)
}

func (m *mockLedger) AddPayment(ctx context.Context, id int64, amount decimal.Decimal, method string) (*models.PaymentEntry, error) {
	args := m.Called(ctx, id, amount.StringFixed(2), method)
	p, _ := args.Get(0).(*models.PaymentEntry)
	return p, args.Error(1)
}

type mockWakeCalls struct{ mock.Mock }

func (m *mockWakeCalls) Snooze(ctx context.Context, id int64, actor string) (*models.Stay, error) {
	args := m.Called(ctx, id, actor)
	s, _ := args.Get(0).(*models.Stay)
	return s, args.Error(1)
}

func (m *mockWakeCalls) Dismiss(ctx context.Context, id int64, actor string) (*models.Stay, error) {
	args := m.Called(ctx, id, actor)
	s, _ := args.Get(0).(*models.Stay)
	return s, args.Error(1)
}

// ==================== 路由 ====================

type fixture struct {
	router    *gin.Engine
	rooms     *mockRooms
	lifecycle *mockLifecycle
	ledger    *mockLedger
	wakeups   *mockWakeCalls
}

func asStaff(c *gin.Context) {
	c.Set(middleware.ContextKeyStaffID, int64(7))
	c.Set(middleware.ContextKeyName, "Maria")
	c.Set(middleware.ContextKeyRole, models.RoleReceptionist)
	c.Next()
}

func setup(t *testing.T, authenticated bool) *fixture {
	t.Helper()
	f := &fixture{rooms: &mockRooms{}, lifecycle: &mockLifecycle{}, ledger: &mockLedger{}, wakeups: &mockWakeCalls{}}
	h := NewHandler(f.rooms, f.lifecycle, f.ledger, f.wakeups)

	f.router = gin.New()
	g := f.router.Group("/rooms")
	if authenticated {
		g.Use(asStaff)
	}
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/workflow", h.Workflow)
	g.POST("/:id/check-in", h.CheckIn)
	g.POST("/:id/checkout", h.Checkout)
	g.POST("/:id/cleaning", h.ConfirmCleaning)
	g.POST("/:id/block", h.Block)
	g.GET("/:id/stay", h.GetStay)
	g.POST("/:id/stay/consumption", h.AddConsumption)
	g.POST("/:id/stay/payments", h.AddPayment)
	g.POST("/:id/wake-call/snooze", h.SnoozeWakeCall)
	return f
}

func (f *fixture) do(method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// ==================== 测试 ====================

func TestList_Filters(t *testing.T) {
	f := setup(t, true)
	f.rooms.On("List", mock.Anything, &repository.RoomFilter{Status: models.RoomStatusDirty, Floor: 3}).
		Return([]*roomService.RoomView{{Room: &models.Room{Number: "35"}}}, nil)

	w, resp := f.do(http.MethodGet, "/rooms?status=dirty&floor=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	f.rooms.AssertExpectations(t)

	w, _ = f.do(http.MethodGet, "/rooms?status=flooded", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(http.MethodGet, "/rooms?floor=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGet_InvalidID(t *testing.T) {
	f := setup(t, true)
	w, _ := f.do(http.MethodGet, "/rooms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflow(t *testing.T) {
	f := setup(t, true)
	f.lifecycle.On("SelectRoom", mock.Anything, int64(3)).
		Return(&lifecycle.Workflow{Kind: lifecycle.WorkflowCleaning, Room: &models.Room{Number: "35"}}, nil)

	w, resp := f.do(http.MethodGet, "/rooms/3/workflow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, lifecycle.WorkflowCleaning, data["kind"])
}

func TestCheckIn(t *testing.T) {
	f := setup(t, true)
	f.lifecycle.On("CheckIn", mock.Anything, int64(1), mock.MatchedBy(func(c stay.Contract) bool {
		return c.GuestName == "Ana" && c.DailyRate.Equal(decimal.NewFromInt(250))
	}), "Maria").Return(&models.Stay{GuestName: "Ana"}, nil)

	w, resp := f.do(http.MethodPost, "/rooms/1/check-in", map[string]interface{}{
		"guest_name": "Ana", "document": "123", "daily_rate": "250.00",
		"check_in_date": "2026-03-10", "expected_checkout": "2026-03-11",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "入住成功", resp.Message)
}

func TestCheckIn_RequiresLogin(t *testing.T) {
	f := setup(t, false)
	w, _ := f.do(http.MethodPost, "/rooms/1/check-in", map[string]string{"guest_name": "Ana"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.lifecycle.AssertNotCalled(t, "CheckIn")
}

func TestCheckout_WrongState(t *testing.T) {
	f := setup(t, true)
	f.lifecycle.On("Checkout", mock.Anything, int64(2), "Maria").Return(nil, errors.ErrInvalidTransition)

	w, resp := f.do(http.MethodPost, "/rooms/2/checkout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errors.ErrInvalidTransition.Code, resp.Code)
}

func TestConfirmCleaning(t *testing.T) {
	f := setup(t, true)
	f.lifecycle.On("ConfirmCleaning", mock.Anything, int64(4), int64(9), "Maria").
		Return(&models.Room{Number: "36", Status: models.RoomStatusAvailable}, nil)

	w, resp := f.do(http.MethodPost, "/rooms/4/cleaning", CleaningRequest{HousekeeperID: 9})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	f.lifecycle.AssertExpectations(t)
}

func TestBlock_UsesActorName(t *testing.T) {
	f := setup(t, true)
	f.lifecycle.On("Block", mock.Anything, int64(5), "Maria").Return(&models.Room{Status: models.RoomStatusBlocked}, nil)

	w, _ := f.do(http.MethodPost, "/rooms/5/block", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	f.lifecycle.AssertExpectations(t)
}

func TestStayEndpoints(t *testing.T) {
	f := setup(t, true)
	f.ledger.On("Statement", mock.Anything, int64(1)).Return(nil, errors.ErrStayNotFound)
	f.ledger.On("AddConsumption", mock.Anything, int64(1), "Água", "5.50", 1).Return(&models.ConsumptionItem{Item: "Água"}, nil)
	f.ledger.On("AddPayment", mock.Anything, int64(1), "100.00", models.PaymentMethodCash).Return(&models.PaymentEntry{}, nil)

	_, resp := f.do(http.MethodGet, "/rooms/1/stay", nil)
	assert.Equal(t, errors.ErrStayNotFound.Code, resp.Code)

	w, resp := f.do(http.MethodPost, "/rooms/1/stay/consumption", ConsumptionRequest{Item: "Água", UnitPrice: "5.5"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	w, _ = f.do(http.MethodPost, "/rooms/1/stay/payments", PaymentRequest{Amount: "100"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(http.MethodPost, "/rooms/1/stay/payments", PaymentRequest{Amount: "cem"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.ledger.AssertExpectations(t)
}

func TestSnoozeWakeCall(t *testing.T) {
	f := setup(t, true)
	f.wakeups.On("Snooze", mock.Anything, int64(8), "Maria").Return(&models.Stay{WakeUpCall: "06:40"}, nil)

	w, resp := f.do(http.MethodPost, "/rooms/8/wake-call/snooze", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "06:40", resp.Data.(map[string]interface{})["wake_up_call"])
}

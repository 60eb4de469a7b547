package lifecycle

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/finance"
	"github.com/dumeirei/hotel-frontdesk/internal/service/maintenance"
	"github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
	"github.com/dumeirei/hotel-frontdesk/internal/service/wakeup"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

type staticHousekeepers map[int64]*models.Employee

func (h staticHousekeepers) Housekeeper(_ context.Context, id int64) (*models.Employee, error) {
	e, ok := h[id]
	if !ok {
		return nil, errors.ErrStaffNotFound
	}
	if !e.IsHousekeeper() {
		return nil, errors.ErrNotHousekeeper
	}
	return e, nil
}

type testController struct {
	*Controller
	db      *gorm.DB
	rooms   *room.RoomService
	ledger  *stay.LedgerService
	tickets *maintenance.TicketService
	wakeups *wakeup.WakeUpService
}

func setupTestController(t *testing.T, allowUnblock bool) *testController {
	_, rdb := testutil.NewRedis(t)
	return newTestController(t, testutil.NewDB(t), rdb, allowUnblock)
}

func newTestController(t *testing.T, db *gorm.DB, rdb redis.Cmdable, allowUnblock bool) *testController {
	ctx := context.Background()

	fd := &config.FrontDeskConfig{
		Floors: []config.FloorRange{
			{Name: "1º Andar", Category: models.RoomCategoryStandard, From: 25, To: 30, BaseRate: 250},
			{Name: "3º Andar", Category: models.RoomCategoryLuxury, From: 301, To: 306, BaseRate: 400},
		},
		SeedStatuses:        map[string]string{"30": models.RoomStatusBlocked},
		WakeUpSnoozeMinutes: 10,
	}
	roomRepo := repository.NewRoomRepository(db)
	stayRepo := repository.NewStayRepository(db)
	tx := database.NewTransactor(db)
	activity := audit.NewActivityService(repository.NewActivityRepository(db), nil)

	rooms := room.NewRoomService(roomRepo, stayRepo, fd)
	_, err := rooms.Generate(ctx)
	require.NoError(t, err)

	ledger := stay.NewLedgerService(stayRepo, roomRepo, tx, finance.NewTransactionService(repository.NewTransactionRepository(db)))
	tickets := maintenance.NewTicketService(repository.NewTicketRepository(db), rooms, tx, activity)
	wakeups := wakeup.NewWakeUpService(stayRepo, roomRepo, wakeup.NewRingingStore(rdb), nil, activity, fd)

	ctrl := NewController(Deps{
		Rooms:   rooms,
		Ledger:  ledger,
		Tickets: tickets,
		Housekeepers: staticHousekeepers{
			1: {ID: 1, Name: "Maria", Role: models.RoleHousekeeper, Status: models.EmployeeStatusActive},
			2: {ID: 2, Name: "João", Role: models.RoleReceptionist, Status: models.EmployeeStatusActive},
		},
		WakeCalls:    wakeups,
		Audit:        activity,
		Tx:           tx,
		AllowUnblock: allowUnblock,
	})
	ctrl.now = func() time.Time { return time.Date(2026, 3, 10, 14, 5, 0, 0, time.Local) }

	return &testController{Controller: ctrl, db: db, rooms: rooms, ledger: ledger, tickets: tickets, wakeups: wakeups}
}

func (s *testController) room(t *testing.T, number string) *models.Room {
	t.Helper()
	r, err := s.rooms.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return r
}

func (s *testController) lastAction(t *testing.T) *models.ActivityLog {
	t.Helper()
	var log models.ActivityLog
	require.NoError(t, s.db.Order("id DESC").First(&log).Error)
	return &log
}

func (s *testController) assertOccupiedMatchesStay(t *testing.T) {
	t.Helper()
	rooms, err := s.rooms.List(context.Background(), nil)
	require.NoError(t, err)
	for _, r := range rooms {
		has, err := s.ledger.HasStay(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Status == models.RoomStatusOccupied, has, "room %s status %s", r.Number, r.Status)
		assert.Equal(t, has, r.GuestName != "", "room %s guest label", r.Number)
	}
}

func contract(guest string) stay.Contract {
	return stay.Contract{
		GuestName:        guest,
		Document:         "123",
		DailyRate:        decimal.NewFromInt(250),
		CheckInDate:      "2026-03-10",
		ExpectedCheckout: "2026-03-11",
	}
}

// ==================== 典型场景 ====================

func TestController_ScenarioCheckInToCheckout(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()
	r := svc.room(t, "25")

	_, err := svc.CheckIn(ctx, r.ID, contract("Ana"), "Recepção")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, svc.room(t, "25").Status)
	assert.Equal(t, "Check-in realizado para Ana no quarto 25", svc.lastAction(t).Description)

	totals, err := svc.ledger.Totals(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", totals.Balance.StringFixed(2))

	_, err = svc.ledger.AddConsumption(ctx, r.ID, "Água", decimal.RequireFromString("6.00"), 2)
	require.NoError(t, err)
	totals, err = svc.ledger.Totals(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "262.00", totals.Balance.StringFixed(2))

	_, err = svc.ledger.AddPayment(ctx, r.ID, decimal.NewFromInt(100), models.PaymentMethodPix)
	require.NoError(t, err)
	totals, err = svc.ledger.Totals(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "162.00", totals.Balance.StringFixed(2))

	final, err := svc.Checkout(ctx, r.ID, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, "162.00", final.Totals.Balance.StringFixed(2))
	assert.Equal(t, models.RoomStatusDirty, svc.room(t, "25").Status)

	has, err := svc.ledger.HasStay(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, has)

	log := svc.lastAction(t)
	assert.Equal(t, audit.ActionCheckOut, log.Action)
	assert.Equal(t, "Checkout do hóspede Ana no quarto 25. Total: R$ 262.00", log.Description)
	svc.assertOccupiedMatchesStay(t)
}

func TestController_ScenarioMaintenance(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()

	ticket, err := svc.tickets.Create(ctx, &maintenance.CreateTicketRequest{
		RoomNumber: "304",
		Issue:      "lock failing",
		Priority:   models.TicketPriorityHigh,
	}, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)

	r := svc.room(t, "304")
	assert.Equal(t, models.RoomStatusMaintenance, r.Status)

	wf, err := svc.SelectRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, WorkflowMaintenanceResolve, wf.Kind)

	_, err = svc.ResolveMaintenance(ctx, r.ID, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusDirty, svc.room(t, "304").Status)

	var stored models.MaintenanceTicket
	require.NoError(t, svc.db.First(&stored, ticket.ID).Error)
	assert.Equal(t, models.TicketStatusDone, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
	assert.Equal(t, "Manutenção concluída no quarto 304. Status alterado para Limpeza.", svc.lastAction(t).Description)
}

func TestController_ScenarioCleaning(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()
	r := svc.room(t, "26")
	require.NoError(t, svc.rooms.SetStatus(ctx, r.ID, models.RoomStatusDirty))

	_, err := svc.ConfirmCleaning(ctx, r.ID, 0, "Recepção")
	assert.True(t, errors.IsCode(err, errors.ErrHousekeeperEmpty))

	_, err = svc.ConfirmCleaning(ctx, r.ID, 2, "Recepção")
	assert.True(t, errors.IsCode(err, errors.ErrNotHousekeeper))
	assert.Equal(t, models.RoomStatusDirty, svc.room(t, "26").Status)

	_, err = svc.ConfirmCleaning(ctx, r.ID, 1, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, svc.room(t, "26").Status)
	assert.Equal(t, "Quarto 26 limpo por Maria", svc.lastAction(t).Description)
}

// ==================== 流转校验 ====================

func TestController_WrongStateHasNoSideEffects(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()
	r := svc.room(t, "27")

	var before int64
	require.NoError(t, svc.db.Model(&models.ActivityLog{}).Count(&before).Error)

	_, err := svc.Checkout(ctx, r.ID, "x")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))
	_, err = svc.ConfirmCleaning(ctx, r.ID, 1, "x")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))
	_, err = svc.ResolveMaintenance(ctx, r.ID, "x")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))

	_, err = svc.CheckIn(ctx, r.ID, contract("Ana"), "x")
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, r.ID, contract("Bia"), "x")
	assert.True(t, errors.IsCode(err, errors.ErrRoomNotAvailable))
	_, err = svc.Block(ctx, r.ID, "x")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))

	var after int64
	require.NoError(t, svc.db.Model(&models.ActivityLog{}).Count(&after).Error)
	assert.Equal(t, before+1, after)
	assert.Equal(t, models.RoomStatusOccupied, svc.room(t, "27").Status)
}

func TestController_CheckInValidationLeavesRoomAvailable(t *testing.T) {
	svc := setupTestController(t, false)
	r := svc.room(t, "28")

	_, err := svc.CheckIn(context.Background(), r.ID, contract(""), "x")
	assert.True(t, errors.IsCode(err, errors.ErrGuestNameRequired))
	assert.Equal(t, models.RoomStatusAvailable, svc.room(t, "28").Status)
	svc.assertOccupiedMatchesStay(t)
}

func TestController_CheckoutAnyBalance(t *testing.T) {
	tests := []struct {
		name    string
		paid    int64
		balance string
	}{
		{"余额为正", 0, "250.00"},
		{"余额为零", 250, "0.00"},
		{"余额为负", 400, "-150.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestController(t, false)
			ctx := context.Background()
			r := svc.room(t, "25")

			_, err := svc.CheckIn(ctx, r.ID, contract("Ana"), "x")
			require.NoError(t, err)
			if tt.paid > 0 {
				_, err = svc.ledger.AddPayment(ctx, r.ID, decimal.NewFromInt(tt.paid), models.PaymentMethodCash)
				require.NoError(t, err)
			}

			final, err := svc.Checkout(ctx, r.ID, "x")
			require.NoError(t, err)
			assert.Equal(t, tt.balance, final.Totals.Balance.StringFixed(2))
			assert.Equal(t, models.RoomStatusDirty, svc.room(t, "25").Status)
		})
	}
}

func TestController_BlockAndUnblock(t *testing.T) {
	ctx := context.Background()

	locked := setupTestController(t, false)
	blocked := locked.room(t, "30")
	_, err := locked.Unblock(ctx, blocked.ID, "x")
	assert.True(t, errors.IsCode(err, errors.ErrUnblockDisabled))

	svc := setupTestController(t, true)
	r := svc.room(t, "29")
	_, err = svc.Block(ctx, r.ID, "x")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusBlocked, svc.room(t, "29").Status)
	assert.Equal(t, audit.ActionRoomBlocked, svc.lastAction(t).Action)

	_, err = svc.Unblock(ctx, r.ID, "x")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, svc.room(t, "29").Status)

	_, err = svc.Unblock(ctx, r.ID, "x")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))
}

func TestController_OccupiedRoomKeepsStayWhenTicketOpened(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()
	r := svc.room(t, "301")

	_, err := svc.CheckIn(ctx, r.ID, contract("Ana"), "x")
	require.NoError(t, err)
	_, err = svc.tickets.Create(ctx, &maintenance.CreateTicketRequest{RoomNumber: "301", Issue: "tv"}, "x")
	require.NoError(t, err)

	assert.Equal(t, models.RoomStatusOccupied, svc.room(t, "301").Status)
	svc.assertOccupiedMatchesStay(t)
}

// ==================== 流程路由 ====================

func TestRoute(t *testing.T) {
	tests := []struct {
		status  string
		ringing bool
		want    string
	}{
		{models.RoomStatusAvailable, false, WorkflowCheckIn},
		{models.RoomStatusOccupied, false, WorkflowStayDetail},
		{models.RoomStatusOccupied, true, WorkflowWakeCall},
		{models.RoomStatusDirty, false, WorkflowCleaning},
		{models.RoomStatusMaintenance, false, WorkflowMaintenanceResolve},
		{models.RoomStatusBlocked, false, WorkflowBlockedNotice},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Route(tt.status, tt.ringing), tt.status)
	}
}

func TestController_SelectRoomPrefillsCheckIn(t *testing.T) {
	svc := setupTestController(t, false)
	r := svc.room(t, "302")

	wf, err := svc.SelectRoom(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, wf.CheckIn)
	assert.Equal(t, WorkflowCheckIn, wf.Kind)
	assert.Equal(t, "400.00", wf.CheckIn.DailyRate.StringFixed(2))
	assert.Equal(t, "2026-03-10", wf.CheckIn.CheckInDate)
	assert.Equal(t, "14:05", wf.CheckIn.CheckInTime)
	assert.Equal(t, "2026-03-11", wf.CheckIn.ExpectedCheckout)
}

func TestController_SelectRoomRingingOverridesStatus(t *testing.T) {
	svc := setupTestController(t, false)
	ctx := context.Background()
	r := svc.room(t, "303")

	c := contract("Ana")
	c.WakeUpEnabled = true
	c.WakeUpDate = "2026-03-11"
	c.WakeUpCall = "06:30"
	_, err := svc.CheckIn(ctx, r.ID, c, "x")
	require.NoError(t, err)

	_, err = svc.wakeups.Check(ctx, time.Date(2026, 3, 11, 6, 30, 0, 0, time.Local))
	require.NoError(t, err)

	wf, err := svc.SelectRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, WorkflowWakeCall, wf.Kind)

	_, err = svc.Checkout(ctx, r.ID, "x")
	require.NoError(t, err)
	ringing, err := svc.wakeups.IsRinging(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, ringing)
}

// ==================== 不变量 ====================

func TestController_OccupiedIffStayUnderRandomOperations(t *testing.T) {
	svc := setupTestController(t, true)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	numbers := []string{"25", "26", "27", "301", "302"}
	ids := make([]int64, len(numbers))
	for i, n := range numbers {
		ids[i] = svc.room(t, n).ID
	}

	for i := 0; i < 150; i++ {
		id := ids[rng.Intn(len(ids))]
		number := numbers[0]
		for j := range ids {
			if ids[j] == id {
				number = numbers[j]
			}
		}
		switch rng.Intn(7) {
		case 0:
			_, _ = svc.CheckIn(ctx, id, contract("Hóspede"), "x")
		case 1:
			_, _ = svc.Checkout(ctx, id, "x")
		case 2:
			_, _ = svc.ConfirmCleaning(ctx, id, 1, "x")
		case 3:
			_, _ = svc.ResolveMaintenance(ctx, id, "x")
		case 4:
			_, _ = svc.tickets.Create(ctx, &maintenance.CreateTicketRequest{RoomNumber: number, Issue: "x"}, "x")
		case 5:
			_, _ = svc.Block(ctx, id, "x")
		case 6:
			_, _ = svc.Unblock(ctx, id, "x")
		}
		svc.assertOccupiedMatchesStay(t)
	}
}

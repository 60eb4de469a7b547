package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	"github.com/dumeirei/hotel-frontdesk/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk/internal/testutil"
)

type testTicketService struct {
	*TicketService
	db    *gorm.DB
	rooms *room.RoomService
}

func setupTestTicketService(t *testing.T, seed map[string]string) *testTicketService {
	db := testutil.NewDB(t)
	rooms := room.NewRoomService(
		repository.NewRoomRepository(db),
		repository.NewStayRepository(db),
		&config.FrontDeskConfig{
			Floors:       []config.FloorRange{{Name: "3º Andar", Category: models.RoomCategoryLuxury, From: 301, To: 306, BaseRate: 400}},
			SeedStatuses: seed,
		},
	)
	_, err := rooms.Generate(context.Background())
	require.NoError(t, err)

	svc := NewTicketService(
		repository.NewTicketRepository(db),
		rooms,
		database.NewTransactor(db),
		audit.NewActivityService(repository.NewActivityRepository(db), nil),
	)
	return &testTicketService{TicketService: svc, db: db, rooms: rooms}
}

func (s *testTicketService) roomStatus(t *testing.T, number string) string {
	t.Helper()
	r, err := s.rooms.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return r.Status
}

func (s *testTicketService) activityActions(t *testing.T) []string {
	t.Helper()
	var logs []models.ActivityLog
	require.NoError(t, s.db.Order("id ASC").Find(&logs).Error)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func TestTicketService_ScenarioB(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()
	resolvedAt := time.Date(2026, 3, 10, 16, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return resolvedAt }

	ticket, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "304", Issue: "lock failing", Priority: models.TicketPriorityHigh}, "Recepção")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Equal(t, models.RoomStatusMaintenance, svc.roomStatus(t, "304"))

	resolved, err := svc.Resolve(ctx, ticket.ID, "Técnico")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusDone, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(resolvedAt))
	assert.Equal(t, models.RoomStatusDirty, svc.roomStatus(t, "304"))

	assert.Equal(t, []string{audit.ActionTicketOpened, audit.ActionTicketClosed}, svc.activityActions(t))

	_, err = svc.Resolve(ctx, ticket.ID, "")
	assert.True(t, errors.IsCode(err, errors.ErrTicketStatusError))
}

func TestTicketService_CreateForcesMaintenanceFromAnyFreeState(t *testing.T) {
	svc := setupTestTicketService(t, map[string]string{
		"302": models.RoomStatusDirty,
		"303": models.RoomStatusMaintenance,
		"305": models.RoomStatusBlocked,
	})
	ctx := context.Background()

	for _, number := range []string{"301", "302", "303"} {
		_, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: number, Issue: "chuveiro"}, "")
		require.NoError(t, err)
		assert.Equal(t, models.RoomStatusMaintenance, svc.roomStatus(t, number), number)
	}

	_, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "305", Issue: "janela"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusBlocked, svc.roomStatus(t, "305"))
}

func TestTicketService_OccupiedRoomKeepsStay(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()

	r, err := svc.rooms.GetByNumber(ctx, "306")
	require.NoError(t, err)
	require.NoError(t, svc.rooms.SetStatus(ctx, r.ID, models.RoomStatusOccupied))

	ticket, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "306", Issue: "ar condicionado"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, svc.roomStatus(t, "306"))

	_, err = svc.Resolve(ctx, ticket.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, svc.roomStatus(t, "306"))
}

func TestTicketService_CreateValidation(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateTicketRequest
		want *errors.AppError
	}{
		{"缺少房号", CreateTicketRequest{Issue: "x"}, errors.ErrTicketRoomRequired},
		{"缺少描述", CreateTicketRequest{RoomNumber: "301", Issue: "  "}, errors.ErrIssueRequired},
		{"优先级无效", CreateTicketRequest{RoomNumber: "301", Issue: "x", Priority: "urgent"}, errors.ErrInvalidPriority},
		{"房间不存在", CreateTicketRequest{RoomNumber: "999", Issue: "x"}, errors.ErrRoomNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req, "")
			assert.True(t, errors.IsCode(err, tt.want), "got %v", err)
		})
	}
	assert.Empty(t, svc.activityActions(t))
	assert.Equal(t, models.RoomStatusAvailable, svc.roomStatus(t, "301"))
}

func TestTicketService_StartAndLists(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "301", Issue: "tv", Priority: models.TicketPriorityLow}, "")
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityLow, a.Priority)
	b, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "302", Issue: "luz"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityMedium, b.Priority)

	started, err := svc.Start(ctx, a.ID, "João")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, started.Status)
	assert.Equal(t, "João", started.Technician)

	_, err = svc.Start(ctx, a.ID, "")
	assert.True(t, errors.IsCode(err, errors.ErrTicketStatusError))
	_, err = svc.Start(ctx, 999, "")
	assert.True(t, errors.IsCode(err, errors.ErrTicketNotFound))

	_, err = svc.Resolve(ctx, b.ID, "")
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	history, err := svc.List(ctx, &TicketListFilter{View: "history"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, b.ID, history[0].ID)

	byRoom, err := svc.List(ctx, &TicketListFilter{RoomNumber: "301"})
	require.NoError(t, err)
	assert.Len(t, byRoom, 1)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[models.TicketStatusPending])
	assert.Equal(t, int64(1), counts[models.TicketStatusInProgress])
	assert.Equal(t, int64(1), counts[models.TicketStatusDone])
}

func TestTicketService_ResolveFirstOpen(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()
	r, err := svc.rooms.GetByNumber(ctx, "303")
	require.NoError(t, err)

	none, err := svc.ResolveFirstOpen(ctx, r.ID, "")
	require.NoError(t, err)
	assert.Nil(t, none)

	first, err := svc.Create(ctx, &CreateTicketRequest{RoomNumber: "303", Issue: "porta"}, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateTicketRequest{RoomNumber: "303", Issue: "cortina"}, "")
	require.NoError(t, err)

	open, err := svc.FirstOpenForRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, open.ID)

	resolved, err := svc.ResolveFirstOpen(ctx, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, resolved.ID)
	// 房态由调用方处理
	assert.Equal(t, models.RoomStatusMaintenance, svc.roomStatus(t, "303"))
}

func TestTicketService_ResolveToleratesMissingRoom(t *testing.T) {
	svc := setupTestTicketService(t, nil)
	ctx := context.Background()

	ticket := &models.MaintenanceTicket{RoomID: 9999, RoomNumber: "999", Issue: "x", Priority: models.TicketPriorityLow, Status: models.TicketStatusPending}
	require.NoError(t, svc.db.Create(ticket).Error)

	resolved, err := svc.Resolve(ctx, ticket.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusDone, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
}

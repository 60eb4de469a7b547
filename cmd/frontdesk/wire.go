package main

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	assistantService "github.com/dumeirei/hotel-frontdesk/internal/service/assistant"
	"github.com/dumeirei/hotel-frontdesk/internal/service/audit"
	cashierService "github.com/dumeirei/hotel-frontdesk/internal/service/cashier"
	catalogService "github.com/dumeirei/hotel-frontdesk/internal/service/catalog"
	"github.com/dumeirei/hotel-frontdesk/internal/service/finance"
	"github.com/dumeirei/hotel-frontdesk/internal/service/lifecycle"
	maintenanceService "github.com/dumeirei/hotel-frontdesk/internal/service/maintenance"
	reportService "github.com/dumeirei/hotel-frontdesk/internal/service/report"
	reservationService "github.com/dumeirei/hotel-frontdesk/internal/service/reservation"
	roomService "github.com/dumeirei/hotel-frontdesk/internal/service/room"
	staffService "github.com/dumeirei/hotel-frontdesk/internal/service/staff"
	"github.com/dumeirei/hotel-frontdesk/internal/service/stay"
	"github.com/dumeirei/hotel-frontdesk/internal/service/wakeup"
	"github.com/dumeirei/hotel-frontdesk/pkg/genai"
	"github.com/dumeirei/hotel-frontdesk/pkg/mqtt"
	"github.com/dumeirei/hotel-frontdesk/pkg/natsbus"
)

// externals 可选外部组件，未启用时为 nil
type externals struct {
	alarms    *mqtt.AlarmPublisher
	bus       *natsbus.Publisher
	generator *genai.Client
}

// services 服务集合
type services struct {
	jwt          *jwt.Manager
	activity     *audit.ActivityService
	transactions *finance.TransactionService
	rooms        *roomService.RoomService
	ledger       *stay.LedgerService
	tickets      *maintenanceService.TicketService
	staff        *staffService.StaffService
	wakeups      *wakeup.WakeUpService
	lifecycle    *lifecycle.Controller
	shifts       *cashierService.ShiftService
	products     *catalogService.ProductService
	reservations *reservationService.ReservationService
	assistant    *assistantService.AssistantService
	reports      *reportService.ReportService
}

// buildServices 组装仓储与服务
// 可选组件以接口形式注入，避免把空指针包装成非空接口
func buildServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, ext externals) *services {
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})
	tx := database.NewTransactor(db)

	// 初始化仓储
	roomRepo := repository.NewRoomRepository(db)
	stayRepo := repository.NewStayRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	productRepo := repository.NewProductRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	var publisher audit.Publisher
	if ext.bus != nil {
		publisher = ext.bus
	}
	var alarms wakeup.AlarmPublisher
	if ext.alarms != nil {
		alarms = ext.alarms
	}
	var generator assistantService.Generator
	if ext.generator != nil {
		generator = ext.generator
	}

	frontDesk := &cfg.Business.FrontDesk

	// 初始化服务
	activitySvc := audit.NewActivityService(activityRepo, publisher)
	transactionSvc := finance.NewTransactionService(transactionRepo)
	roomSvc := roomService.NewRoomService(roomRepo, stayRepo, frontDesk)
	ledgerSvc := stay.NewLedgerService(stayRepo, roomRepo, tx, transactionSvc)
	ticketSvc := maintenanceService.NewTicketService(ticketRepo, roomSvc, tx, activitySvc)
	staffSvc := staffService.NewStaffService(employeeRepo, jwtManager, activitySvc, cfg.Crypto.BcryptCost)
	wakeupSvc := wakeup.NewWakeUpService(stayRepo, roomRepo, wakeup.NewRingingStore(redisClient), alarms, activitySvc, frontDesk)
	roomSvc.SetRingingLookup(wakeupSvc)

	controller := lifecycle.NewController(lifecycle.Deps{
		Rooms:        roomSvc,
		Ledger:       ledgerSvc,
		Tickets:      ticketSvc,
		Housekeepers: staffSvc,
		WakeCalls:    wakeupSvc,
		Audit:        activitySvc,
		Tx:           tx,
		AllowUnblock: frontDesk.AllowUnblock,
	})

	return &services{
		jwt:          jwtManager,
		activity:     activitySvc,
		transactions: transactionSvc,
		rooms:        roomSvc,
		ledger:       ledgerSvc,
		tickets:      ticketSvc,
		staff:        staffSvc,
		wakeups:      wakeupSvc,
		lifecycle:    controller,
		shifts:       cashierService.NewShiftService(shiftRepo, transactionSvc, staffSvc, activitySvc, &cfg.Business.Cashier),
		products:     catalogService.NewProductService(productRepo, activitySvc),
		reservations: reservationService.NewReservationService(reservationRepo, roomSvc, activitySvc),
		assistant:    assistantService.NewAssistantService(generator, roomSvc, ticketSvc),
		reports:      reportService.NewReportService(roomSvc, ledgerSvc, ticketSvc, activitySvc, transactionSvc),
	}
}

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/hotel-frontdesk/internal/common/middleware"
	adminHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/admin"
	assistantHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/assistant"
	authHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/auth"
	cashierHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/cashier"
	maintenanceHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/maintenance"
	reportHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/report"
	reservationHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/reservation"
	roomHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/room"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
)

// 单个请求体上限
const maxRequestBody = 1 << 20

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	svc *services,
) {
	// 初始化处理器
	authH := authHandler.NewHandler(svc.staff, svc.jwt)
	roomH := roomHandler.NewHandler(svc.rooms, svc.lifecycle, svc.ledger, svc.wakeups)
	ticketH := maintenanceHandler.NewHandler(svc.tickets)
	shiftH := cashierHandler.NewHandler(svc.shifts)
	reservationH := reservationHandler.NewHandler(svc.reservations)
	reportH := reportHandler.NewHandler(svc.reports, svc.transactions)
	staffH := adminHandler.NewStaffHandler(svc.staff)
	productH := adminHandler.NewProductHandler(svc.products)
	assistantH := assistantHandler.NewHandler(svc.assistant)

	operationLog := commonMiddleware.NewOperationLogger(svc.activity, middleware.GetActorName)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(middleware.FromSettings(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
		cfg.CORS.ExposedHeaders,
		cfg.CORS.AllowCredentials,
		cfg.CORS.MaxAge,
	)))
	r.Use(middleware.AccessLog(logger, cfg.Metrics.Path))
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
			Actor:       middleware.GetStaffID,
		}))
	}
	if cfg.Metrics.Enabled {
		m := metrics.GetMetrics()
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, m.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.BodyLimit(maxRequestBody))
	{
		// 公开接口
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimit(redisClient, 10, time.Minute), authH.Login)
			auth.POST("/refresh", authH.Refresh)
		}

		// 员工接口（需要登录）
		staff := v1.Group("")
		staff.Use(middleware.StaffAuth(svc.jwt))
		staff.Use(middleware.NoCache())
		{
			staff.GET("/auth/me", authH.Me)

			// 房态与流转
			rooms := staff.Group("/rooms")
			{
				rooms.GET("", roomH.List)
				rooms.GET("/summary", roomH.Summary)
				rooms.GET("/:id", roomH.Get)
				rooms.GET("/:id/workflow", roomH.Workflow)
				rooms.POST("/:id/check-in", roomH.CheckIn)
				rooms.POST("/:id/checkout", roomH.Checkout)
				rooms.POST("/:id/cleaning", roomH.ConfirmCleaning)
				rooms.POST("/:id/maintenance/resolve", roomH.ResolveMaintenance)
				rooms.POST("/:id/block", middleware.RequireManager(), roomH.Block)
				rooms.POST("/:id/unblock", middleware.RequireManager(), roomH.Unblock)

				// 入住账本
				rooms.GET("/:id/stay", roomH.GetStay)
				rooms.PATCH("/:id/stay", roomH.UpdateStay)
				rooms.POST("/:id/stay/consumption", roomH.AddConsumption)
				rooms.POST("/:id/stay/payments", roomH.AddPayment)

				// 叫醒
				rooms.POST("/:id/wake-call/snooze", roomH.SnoozeWakeCall)
				rooms.POST("/:id/wake-call/dismiss", roomH.DismissWakeCall)
			}

			// 维修工单
			tickets := staff.Group("/maintenance/tickets")
			{
				tickets.GET("", ticketH.List)
				tickets.GET("/counts", ticketH.Counts)
				tickets.POST("", ticketH.Create)
				tickets.POST("/:id/start", ticketH.Start)
				tickets.POST("/:id/resolve", ticketH.Resolve)
			}

			// 收银班次
			cashier := staff.Group("/cashier")
			{
				cashier.GET("/shift-label", shiftH.ShiftLabel)
				cashier.GET("/shift", shiftH.Current)
				cashier.POST("/shift/open", shiftH.Open)
				cashier.POST("/shift/close", shiftH.Close)
				cashier.POST("/entries", shiftH.RecordEntry)
				cashier.GET("/shifts", middleware.RequireManager(), shiftH.History)
			}

			// 预订
			reservations := staff.Group("/reservations")
			{
				reservations.GET("", reservationH.List)
				reservations.POST("", reservationH.Create)
				reservations.PUT("/:id", reservationH.Update)
				reservations.DELETE("/:id", reservationH.Delete)
			}

			// 商品
			staff.GET("/products", productH.List)
			staff.GET("/products/low-stock", productH.LowStock)

			// 助手
			staff.POST("/assistant/ask", assistantH.Ask)
			staff.GET("/assistant/snapshot", assistantH.Snapshot)

			// 报表与流水（经理及以上）
			manager := staff.Group("")
			manager.Use(middleware.RequireManager())
			{
				manager.GET("/transactions", reportH.Transactions)
				manager.GET("/activity", reportH.Activity)
				manager.GET("/reports/board", reportH.Board)
				manager.GET("/reports/revenue", reportH.Revenue)
				manager.GET("/reports/export", reportH.Export)
			}

			// 后台管理（管理员），写操作记入审计日志
			admin := staff.Group("")
			admin.Use(middleware.RequireAdmin())
			admin.Use(operationLog.Handler())
			{
				admin.GET("/staff", staffH.List)
				admin.GET("/staff/:id", staffH.Get)
				admin.POST("/staff", staffH.Create)
				admin.PUT("/staff/:id/status", staffH.SetStatus)
				admin.POST("/products", productH.Create)
				admin.POST("/products/:id/stock", productH.AdjustStock)
			}
		}
	}
}

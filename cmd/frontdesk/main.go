// Package main 是前台服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/scheduler"
	"github.com/dumeirei/hotel-frontdesk/pkg/genai"
	"github.com/dumeirei/hotel-frontdesk/pkg/mqtt"
	"github.com/dumeirei/hotel-frontdesk/pkg/natsbus"
)

const version = "1.0.0"

func main() {
	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting Hotel FrontDesk",
		zap.String("version", version),
		zap.String("env", cfg.Server.Mode),
	)

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis 连接（响铃状态）
	redisClient, err := cache.Init(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Redis connected successfully")

	// 链路追踪
	tracer, err := tracing.Init(&tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Mode,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}

	if cfg.Metrics.Enabled {
		metrics.Init("frontdesk").SetSkipPath(cfg.Metrics.Path)
	}

	// 外部组件均为可选，连接失败只降级不退出
	ext := externals{}

	if cfg.MQTT.Enabled {
		client := mqtt.NewClient(&mqtt.Config{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientIDPrefix + uuid.NewString()[:8],
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			QoS:            cfg.MQTT.QoS,
			Retained:       cfg.MQTT.Retained,
			KeepAlive:      cfg.MQTT.KeepAlive,
			AutoReconnect:  cfg.MQTT.AutoReconnect,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			Logger:         log,
		})
		if err := client.Connect(); err != nil {
			log.Warn("MQTT unavailable, wake-up alarms stay on the board only", zap.Error(err))
		} else {
			defer client.Disconnect()
			ext.alarms = mqtt.NewAlarmPublisher(client, cfg.MQTT.TopicPrefix)
		}
	}

	if cfg.NATS.Enabled {
		bus, err := natsbus.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.Server.Name)
		if err != nil {
			log.Warn("NATS unavailable, activity events are not broadcast", zap.Error(err))
		} else {
			defer bus.Close()
			ext.bus = bus
		}
	}

	if cfg.Assistant.Enabled {
		ext.generator = genai.NewClient(genai.Config{
			BaseURL: cfg.Assistant.BaseURL,
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			Timeout: cfg.Assistant.TimeoutDuration(),
		})
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	svc := buildServices(cfg, db, redisClient, ext)

	// 面板按键回传
	if ext.alarms != nil {
		if err := ext.alarms.SubscribeAcks(context.Background(), svc.wakeups.HandlePanelAck); err != nil {
			log.Warn("Failed to subscribe wake-up acks", zap.Error(err))
		}
	}

	// 后台任务
	sched := scheduler.NewScheduler()
	scheduler.SetupTasks(sched, scheduler.NewTaskHandler(svc.wakeups, svc.rooms), &cfg.Business.FrontDesk)
	sched.Start(context.Background())

	// 创建 Gin 引擎
	engine := gin.New()

	// 设置路由
	setupRouter(engine, cfg, log, db, redisClient, svc)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdown := cfg.Server.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 30
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdown)*time.Second)
	defer cancel()

	// 先停后台任务，再关 HTTP
	sched.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	if err := database.Close(); err != nil {
		log.Warn("Database close failed", zap.Error(err))
	}

	log.Info("Server exited")
}

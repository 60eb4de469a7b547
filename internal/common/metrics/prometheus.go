// Package metrics 提供 Prometheus 指标收集
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标收集器
type Metrics struct {
	registry *prometheus.Registry
	skipPath string

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	roomsByStatus        *prometheus.GaugeVec
	stayEventsTotal      *prometheus.CounterVec
	ticketEventsTotal    *prometheus.CounterVec
	wakeUpAlarmsTotal    *prometheus.CounterVec
	cashierEventsTotal   *prometheus.CounterVec
	mqttMessagesTotal    *prometheus.CounterVec
	assistantRequests    *prometheus.CounterVec
	taskDuration         *prometheus.HistogramVec
}

var defaultMetrics *Metrics

// Init 初始化指标收集器，每次调用使用独立的 Registry
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hotel_frontdesk"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		skipPath: "/metrics",
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		roomsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rooms",
				Help:      "Number of rooms per status",
			},
			[]string{"status"},
		),
		stayEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stay_events_total",
				Help:      "Check-ins and checkouts processed",
			},
			[]string{"event"},
		),
		ticketEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "maintenance_ticket_events_total",
				Help:      "Maintenance ticket transitions",
			},
			[]string{"event", "priority"},
		),
		wakeUpAlarmsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wakeup_alarms_total",
				Help:      "Wake-up call alarms by outcome",
			},
			[]string{"outcome"},
		),
		cashierEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cashier_events_total",
				Help:      "Cash shift events",
			},
			[]string{"event"},
		),
		mqttMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mqtt_messages_total",
				Help:      "Total number of MQTT messages",
			},
			[]string{"topic", "direction"},
		),
		assistantRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assistant_requests_total",
				Help:      "Assistant questions by outcome",
			},
			[]string{"outcome"},
		),
		taskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scheduled_task_duration_seconds",
				Help:      "Background task run time by result",
				Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
			},
			[]string{"task", "result"},
		),
	}

	defaultMetrics = m
	return m
}

// GetMetrics 获取默认指标收集器
func GetMetrics() *Metrics {
	if defaultMetrics == nil {
		return Init("")
	}
	return defaultMetrics
}

// SetSkipPath 设置不统计的路径（指标端点本身）
func (m *Metrics) SetSkipPath(path string) {
	if path != "" {
		m.skipPath = path
	}
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware 返回 Gin 中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == m.skipPath {
			c.Next()
			return
		}

		start := time.Now()
		m.httpRequestsInFlight.Inc()

		c.Next()

		m.httpRequestsInFlight.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// Handler 返回 Prometheus HTTP 处理器
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// SetRoomsByStatus 更新各房态房间数
func (m *Metrics) SetRoomsByStatus(counts map[string]int64) {
	m.roomsByStatus.Reset()
	for status, n := range counts {
		m.roomsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordStayEvent 记录入住事件（check_in / checkout）
func (m *Metrics) RecordStayEvent(event string) {
	m.stayEventsTotal.WithLabelValues(event).Inc()
}

// RecordTicketEvent 记录工单事件
func (m *Metrics) RecordTicketEvent(event, priority string) {
	m.ticketEventsTotal.WithLabelValues(event, priority).Inc()
}

// RecordWakeUp 记录叫醒事件（fired / snoozed / dismissed）
func (m *Metrics) RecordWakeUp(outcome string) {
	m.wakeUpAlarmsTotal.WithLabelValues(outcome).Inc()
}

// RecordCashierEvent 记录收银事件
func (m *Metrics) RecordCashierEvent(event string) {
	m.cashierEventsTotal.WithLabelValues(event).Inc()
}

// RecordMQTTMessage 记录 MQTT 消息
func (m *Metrics) RecordMQTTMessage(topic, direction string) {
	m.mqttMessagesTotal.WithLabelValues(topic, direction).Inc()
}

// RecordAssistant 记录助手请求结果
func (m *Metrics) RecordAssistant(outcome string) {
	m.assistantRequests.WithLabelValues(outcome).Inc()
}

// ObserveTask 记录后台任务耗时，result 为 ok / error / panic
func (m *Metrics) ObserveTask(task, result string, d time.Duration) {
	m.taskDuration.WithLabelValues(task, result).Observe(d.Seconds())
}

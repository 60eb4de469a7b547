// Package tracing OpenTelemetry 追踪
//
// Init 设置全局 TracerProvider；未初始化或未启用时 Start 返回的是 noop span，
// 业务代码无需判断追踪是否开启。
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/dumeirei/hotel-frontdesk"

// Config 追踪配置
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string // OTLP gRPC 地址，为空时输出到 stdout
	SampleRate     float64
	Enabled        bool
}

// Tracer 持有 provider，退出时 Shutdown 刷新剩余 span
type Tracer struct {
	provider *sdktrace.TracerProvider
	config   *Config
}

// Init 初始化全局追踪
func Init(cfg *Config) (*Tracer, error) {
	if cfg == nil {
		cfg = &Config{ServiceName: "hotel-frontdesk", Environment: "development", SampleRate: 1, Enabled: true}
	}
	if !cfg.Enabled {
		return &Tracer{config: cfg}, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	exporter, err := newExporter(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{provider: provider, config: cfg}, nil
}

func newExporter(endpoint string) (sdktrace.SpanExporter, error) {
	if endpoint == "" {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}
		return exp, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter %s: %w", endpoint, err)
	}
	return exp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown 刷新并关闭 provider
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Start 开始内部 span
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetError 记录错误并把 span 标记为失败
func SetError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// 前台领域属性
var (
	AttrStaffID    = attribute.Key("frontdesk.staff.id")
	AttrRoomNumber = attribute.Key("frontdesk.room.number")
	AttrStayID     = attribute.Key("frontdesk.stay.id")
	AttrTicketID   = attribute.Key("frontdesk.ticket.id")
	AttrShiftID    = attribute.Key("frontdesk.shift.id")
	AttrOperation  = attribute.Key("frontdesk.operation")
)

func WithStaffID(id int64) attribute.KeyValue         { return AttrStaffID.Int64(id) }
func WithRoomNumber(number string) attribute.KeyValue { return AttrRoomNumber.String(number) }
func WithStayID(id int64) attribute.KeyValue          { return AttrStayID.Int64(id) }
func WithTicketID(id int64) attribute.KeyValue        { return AttrTicketID.Int64(id) }
func WithShiftID(id int64) attribute.KeyValue         { return AttrShiftID.Int64(id) }
func WithOperation(op string) attribute.KeyValue      { return AttrOperation.String(op) }

package xmetrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xcommit/pkg/context/xctx"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xcommit/xmetrics"
	unknown                    = "unknown"

	metricOperationTotal    = "xcommit.operation.total"
	metricOperationDuration = "xcommit.operation.duration"
	metricTxnOutcome        = "xcommit.transaction.outcome"
)

type otelConfig struct {
	name           string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option 配置 [NewOTelObserver]。
type Option func(*otelConfig)

// WithInstrumentationName 设置 tracer/meter 的 instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithTracerProvider 替换全局 TracerProvider。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 替换全局 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建 OpenTelemetry 实现，默认使用 otel 全局 provider。
// 返回的 Observer 同时实现 [OutcomeRecorder]。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		name:           defaultInstrumentationName,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.name)
	total, errTotal := meter.Int64Counter(metricOperationTotal,
		metric.WithDescription("operations by component, operation and status"),
		metric.WithUnit("1"))
	duration, errDuration := meter.Float64Histogram(metricOperationDuration,
		metric.WithDescription("operation latency"),
		metric.WithUnit("s"))
	outcomes, errOutcomes := meter.Int64Counter(metricTxnOutcome,
		metric.WithDescription("kafka transactions by commit outcome"),
		metric.WithUnit("1"))
	if err := errors.Join(errTotal, errDuration, errOutcomes); err != nil {
		return nil, fmt.Errorf("xmetrics: create instruments: %w", err)
	}

	return &otelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.name),
		total:    total,
		duration: duration,
		outcomes: outcomes,
	}, nil
}

type otelObserver struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
}

var _ OutcomeRecorder = (*otelObserver)(nil)

// Start 开始 OTel span。ctx 里没有 OTel span 但 xctx 带有 trace/span id 时，
// 以其为远端父 span；新 span 的标识再写回 xctx，日志和追踪共用同一个 trace_id。
func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component, operation := orUnknown(opts.Component), orUnknown(opts.Operation)

	attrs := append([]Attr{
		attribute.String("component", component),
		attribute.String("operation", operation),
	}, validAttrs(opts.Attrs)...)

	ctx, span := o.tracer.Start(remoteParent(ctx), operation,
		trace.WithSpanKind(opts.Kind),
		trace.WithAttributes(attrs...),
	)
	ctx = exportToXctx(ctx, span.SpanContext())

	return ctx, &otelSpan{
		span:     span,
		observer: o,
		ctx:      ctx,
		labels: []Attr{
			attribute.String("component", component),
			attribute.String("operation", operation),
		},
		start: time.Now(),
	}
}

// RecordOutcome 累加 xcommit.transaction.outcome。
func (o *otelObserver) RecordOutcome(ctx context.Context, component, outcome string, n int64) {
	o.outcomes.Add(context.WithoutCancel(ctx), n, metric.WithAttributes(
		attribute.String("component", orUnknown(component)),
		attribute.String("outcome", outcome),
	))
}

type otelSpan struct {
	span     trace.Span
	observer *otelObserver
	ctx      context.Context
	labels   []Attr
	start    time.Time
	once     sync.Once
}

func (s *otelSpan) End(result Result) {
	s.once.Do(func() { s.end(result) })
}

func (s *otelSpan) end(result Result) {
	status := result.status()
	if result.Err != nil {
		s.span.RecordError(result.Err)
	}
	switch {
	case status == StatusOK:
		s.span.SetStatus(codes.Ok, "")
	case result.Err != nil:
		s.span.SetStatus(codes.Error, result.Err.Error())
	default:
		s.span.SetStatus(codes.Error, "operation failed")
	}
	if attrs := validAttrs(result.Attrs); len(attrs) > 0 {
		s.span.SetAttributes(attrs...)
	}
	s.span.End()

	// 周期被取消时失败同样要计入
	ctx := context.WithoutCancel(s.ctx)
	labels := metric.WithAttributes(append(s.labels, attribute.String("status", string(status)))...)
	s.observer.total.Add(ctx, 1, labels)
	s.observer.duration.Record(ctx, time.Since(s.start).Seconds(), labels)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// validAttrs 去掉没有 key 的属性（零值 Attr）。
func validAttrs(attrs []Attr) []Attr {
	out := attrs[:0:0]
	for _, a := range attrs {
		if a.Valid() {
			out = append(out, a)
		}
	}
	return out
}

func remoteParent(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	traceID, err := trace.TraceIDFromHex(xctx.TraceID(ctx))
	if err != nil {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(xctx.SpanID(ctx))
	if err != nil {
		return ctx
	}
	var flags trace.TraceFlags
	if parsed, err := strconv.ParseUint(xctx.TraceFlags(ctx), 16, 8); err == nil {
		flags = trace.TraceFlags(parsed)
	}
	return trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
	}))
}

func exportToXctx(ctx context.Context, sc trace.SpanContext) context.Context {
	if !sc.IsValid() {
		return ctx
	}
	for _, set := range []struct {
		fn  func(context.Context, string) (context.Context, error)
		val string
	}{
		{xctx.WithTraceID, sc.TraceID().String()},
		{xctx.WithSpanID, sc.SpanID().String()},
		{xctx.WithTraceFlags, sc.TraceFlags().String()},
	} {
		if next, err := set.fn(ctx, set.val); err == nil {
			ctx = next
		}
	}
	return ctx
}

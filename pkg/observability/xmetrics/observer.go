package xmetrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attr 是跨度和指标上的属性，直接使用 OTel 的 KeyValue。
type Attr = attribute.KeyValue

// String、Int、Int64 构造常用属性。
func String(key, value string) Attr { return attribute.String(key, value) }
func Int(key string, value int) Attr { return attribute.Int(key, value) }
func Int64(key string, value int64) Attr { return attribute.Int64(key, value) }

// Kind 是跨度类型。
type Kind = trace.SpanKind

const (
	KindInternal = trace.SpanKindInternal
	KindClient   = trace.SpanKindClient
	KindProducer = trace.SpanKindProducer
)

// Status 是跨度结束时的状态。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// SpanOptions 描述一次观测跨度。Component 和 Operation 为空时记为 "unknown"。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 是跨度的结束结果。Status 为空时由 Err 推导。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

func (r Result) status() Status {
	switch {
	case r.Status != "":
		return r.Status
	case r.Err != nil:
		return StatusError
	default:
		return StatusOK
	}
}

// Span 是进行中的观测跨度，End 只有第一次调用生效。
type Span interface {
	End(result Result)
}

// Observer 创建观测跨度。组件只依赖这个接口，默认实现见 [NewOTelObserver]。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// OutcomeRecorder 是可选能力：按 component/outcome 累计事务提交结果。
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, component, outcome string, n int64)
}

// Start 用 observer 开始跨度，nil ctx、nil observer 以及 observer 返回的 nil 值都被兜底，
// 调用方总能拿到可用的 ctx 和 Span。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	next, span := observer.Start(ctx, opts)
	if next == nil {
		next = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return next, span
}

// RecordOutcome 在 observer 实现 [OutcomeRecorder] 且 n > 0 时记录 n 次 outcome。
func RecordOutcome(ctx context.Context, observer Observer, component, outcome string, n int64) {
	rec, ok := observer.(OutcomeRecorder)
	if !ok || n <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rec.RecordOutcome(ctx, component, outcome, n)
}

// NoopObserver 不产生任何跨度和指标，是各组件的默认值。
type NoopObserver struct{}

func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 的 End 什么都不做。
type NoopSpan struct{}

func (NoopSpan) End(Result) {}

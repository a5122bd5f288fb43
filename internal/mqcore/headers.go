package mqcore

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xcommit/pkg/context/xctx"
)

// HeaderInjector 把当前追踪上下文写入消息头（W3C traceparent/tracestate + baggage）。
//
// 事务内写入的消息携带提交周期的 trace，下游消费者可以把消费链路挂到同一条 trace 上。
type HeaderInjector struct {
	propagator propagation.TextMapPropagator
}

// NewHeaderInjector 创建 HeaderInjector，propagator 为 nil 时使用 TraceContext + Baggage。
func NewHeaderInjector(propagator propagation.TextMapPropagator) HeaderInjector {
	if propagator == nil {
		propagator = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}
	return HeaderInjector{propagator: propagator}
}

// Inject 将追踪信息注入 headers。headers 为 nil 时不做任何事。
//
// ctx 中没有 OTel span 时，尝试使用 xctx 中的 trace_id/span_id 构造父 span。
func (h HeaderInjector) Inject(ctx context.Context, headers map[string]string) {
	if headers == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.propagator.Inject(spanContextFromXctx(ctx), propagation.MapCarrier(headers))
}

func spanContextFromXctx(ctx context.Context) context.Context {
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
	// 设计决策: 显式携带 trace_id 视为期望采样，默认 FlagsSampled。
	return trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
}

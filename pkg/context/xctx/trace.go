package xctx

import "context"

// 追踪字段的日志 key，与 OpenTelemetry 日志约定一致。
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyTraceFlags = "trace_flags"

	traceFieldCount = 3
)

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

// WithTraceID 写入 W3C trace ID（32 位 hex），不校验格式。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return with(ctx, keyTraceID, traceID)
}

// TraceID 返回 trace ID，缺失时为空。
func TraceID(ctx context.Context) string { return stringValue(ctx, keyTraceID) }

// WithSpanID 写入 W3C span ID（16 位 hex），不校验格式。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return with(ctx, keySpanID, spanID)
}

// SpanID 返回 span ID，缺失时为空。
func SpanID(ctx context.Context) string { return stringValue(ctx, keySpanID) }

// WithTraceFlags 写入两位 hex 的 trace flags，"01" 表示已采样。
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	return with(ctx, keyTraceFlags, flags)
}

// TraceFlags 返回 trace flags，缺失时为空。
func TraceFlags(ctx context.Context) string { return stringValue(ctx, keyTraceFlags) }

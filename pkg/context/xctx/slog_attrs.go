package xctx

import (
	"context"
	"log/slog"
)

// MaxAttrs 是 AppendAttrs 最多追加的属性数，调用方可据此预分配栈数组。
const MaxAttrs = traceFieldCount + commitFieldCount

// AppendAttrs 把 ctx 中已设置的追踪和提交周期字段追加到 attrs。
// 顺序固定：trace_id、span_id、trace_flags、sink、checkpoint_id、cycle_id。
func AppendAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	for _, f := range [...]struct{ key, val string }{
		{KeyTraceID, TraceID(ctx)},
		{KeySpanID, SpanID(ctx)},
		{KeyTraceFlags, TraceFlags(ctx)},
		{KeySink, Sink(ctx)},
	} {
		if f.val != "" {
			attrs = append(attrs, slog.String(f.key, f.val))
		}
	}
	if id, ok := CheckpointID(ctx); ok {
		attrs = append(attrs, slog.Int64(KeyCheckpointID, id))
	}
	if id := CycleID(ctx); id != "" {
		attrs = append(attrs, slog.String(KeyCycleID, id))
	}
	return attrs
}

// Attrs 返回 ctx 中的全部字段，都未设置时返回 nil。每次调用都会分配。
func Attrs(ctx context.Context) []slog.Attr {
	attrs := AppendAttrs(make([]slog.Attr, 0, MaxAttrs), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

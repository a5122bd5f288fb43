package xctx

import (
	"context"

	"github.com/google/uuid"
)

// 提交周期字段的日志 key。
const (
	KeySink         = "sink"
	KeyCheckpointID = "checkpoint_id"
	KeyCycleID      = "cycle_id"

	commitFieldCount = 3
)

const (
	keySink         = contextKey("xctx:sink")
	keyCheckpointID = contextKey("xctx:checkpoint_id")
	keyCycleID      = contextKey("xctx:cycle_id")
)

// WithSink 写入 sink 名称。
func WithSink(ctx context.Context, sink string) (context.Context, error) {
	return with(ctx, keySink, sink)
}

// Sink 返回 sink 名称，缺失时为空。
func Sink(ctx context.Context) string { return stringValue(ctx, keySink) }

// WithCheckpointID 写入触发本次提交的 checkpoint 编号，负数返回 ErrInvalidCheckpointID。
func WithCheckpointID(ctx context.Context, id int64) (context.Context, error) {
	if ctx != nil && id < 0 {
		return nil, ErrInvalidCheckpointID
	}
	return with(ctx, keyCheckpointID, id)
}

// CheckpointID 返回 checkpoint 编号，ok 区分未设置与编号 0。
func CheckpointID(ctx context.Context) (id int64, ok bool) {
	return lookup[int64](ctx, keyCheckpointID)
}

// WithCycleID 写入提交周期标识。
func WithCycleID(ctx context.Context, id string) (context.Context, error) {
	return with(ctx, keyCycleID, id)
}

// CycleID 返回提交周期标识，缺失时为空。
func CycleID(ctx context.Context) string { return stringValue(ctx, keyCycleID) }

// EnsureCycleID 在缺少周期标识时生成一个 UUIDv4，已有时原样返回 ctx。
func EnsureCycleID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if CycleID(ctx) != "" {
		return ctx, nil
	}
	return WithCycleID(ctx, uuid.NewString())
}

package xctx

import (
	"context"
	"errors"
)

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrInvalidCheckpointID 表示 checkpoint 编号为负数。
	ErrInvalidCheckpointID = errors.New("xctx: invalid checkpoint_id")
)

// contextKey 是包私有的 key 类型，值取 "xctx:<字段名>"，调试时可读。
type contextKey string

// with 是所有 WithXxx 的公共实现。
func with[T any](ctx context.Context, key contextKey, v T) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

// lookup 读取 key 对应的值，nil ctx 或类型不符都视为缺失。
func lookup[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := lookup[string](ctx, key)
	return v
}

package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xcommit/pkg/context/xctx"
)

// ErrNilHandler 表示 NewEnrichHandler 收到 nil handler。
var ErrNilHandler = errors.New("xlog: base handler is nil")

// EnrichHandler 在每条记录上追加 ctx 里的追踪和提交周期字段
// （trace_id/span_id/trace_flags、sink/checkpoint_id/cycle_id），缺失的字段直接跳过。
// Build 默认用它包装输出 handler。
type EnrichHandler struct {
	next slog.Handler
}

var _ slog.Handler = (*EnrichHandler)(nil)

// NewEnrichHandler 包装 next。
func NewEnrichHandler(next slog.Handler) (*EnrichHandler, error) {
	if next == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{next: next}, nil
}

func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle 只在确有字段时 Clone record，slog 要求修改前先 Clone。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [xctx.MaxAttrs]slog.Attr
	if attrs := xctx.AppendAttrs(buf[:0], ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{next: h.next.WithAttrs(attrs)}
}

func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{next: h.next.WithGroup(name)}
}

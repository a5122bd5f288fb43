package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
)

// Group 并发运行一组服务：任一服务返回错误即取消其余服务。
//
// Go、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg     *errgroup.Group
	ctx    context.Context
	parent context.Context
	cancel context.CancelCauseFunc
	logger xlog.Logger
	opts   *groupOptions
}

// NewGroup 创建 Group。返回的 context 在任一服务出错、Cancel 或 ctx 结束时取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := &groupOptions{logger: xlog.Nop(), name: "xrun"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	parent, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(parent)
	return &Group{
		eg:     eg,
		ctx:    egCtx,
		parent: parent,
		cancel: cancel,
		logger: o.logger.With(slog.String("group", o.name)),
		opts:   o,
	}, egCtx
}

// Go 启动名为 name 的服务。
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	logger := g.logger.With(slog.String("service", name))
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		logger.Debug(g.ctx, "service starting")
		err := fn(g.ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			logger.Debug(g.ctx, "service stopped")
		default:
			logger.Warn(g.ctx, "service exited with error", xlog.Err(err))
		}
		return err
	})
}

// Wait 等待所有服务结束并返回第一个错误。
//
// Group 被取消时，服务返回的 context.Canceled 视为正常退出，Wait 改为返回
// Cancel 传入的 cause（如 *SignalError），cause 为空时返回 nil。
// 未经取消而由服务自行返回的 context.Canceled 原样返回。
func (g *Group) Wait() error {
	err := g.eg.Wait()
	canceled := g.parent.Err() != nil
	cause := context.Cause(g.parent)
	g.cancel(nil)

	switch {
	case !canceled:
		return err
	case err != nil && !errors.Is(err, context.Canceled):
		return err
	case cause != nil && !errors.Is(cause, context.Canceled):
		return cause
	default:
		return nil
	}
}

// Cancel 取消所有服务，cause 会由 Wait 返回。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回服务运行使用的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

package xrun

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

// Service 是可由 RunServices 托管的长期任务。
type Service interface {
	// Run 阻塞直到 ctx 被取消或发生错误。
	Run(ctx context.Context) error
}

// ServiceFunc 让普通函数满足 Service。
type ServiceFunc func(ctx context.Context) error

func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

type namedService struct {
	Service
	name string
}

// Named 给 svc 命名，RunServices 的日志以此代替 "service-<序号>"。
func Named(name string, svc Service) Service {
	if svc == nil {
		return nil
	}
	return namedService{Service: svc, name: name}
}

func serviceName(i int, svc Service) string {
	if named, ok := svc.(namedService); ok && named.name != "" {
		return named.name
	}
	return "service-" + strconv.Itoa(i)
}

// DefaultSignals 是 RunServices 默认监听的信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// RunServices 在同一个 Group 中运行 services 并等待它们结束。
//
// 收到信号时取消所有服务并返回 *SignalError（errors.Is(err, ErrSignal) 为 true）。
func RunServices(ctx context.Context, opts []Option, services ...Service) error {
	g, _ := NewGroup(ctx, opts...)

	signals := g.opts.signals
	if signals == nil {
		signals = DefaultSignals()
	}
	if len(signals) > 0 {
		g.Go("signal", g.watchSignals(signals))
	}

	for i, svc := range services {
		if svc == nil {
			g.Go("nil", func(context.Context) error { return ErrNilService })
			continue
		}
		g.Go(serviceName(i, svc), svc.Run)
	}
	return g.Wait()
}

func (g *Group) watchSignals(signals []os.Signal) func(context.Context) error {
	return func(ctx context.Context) error {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, signals...)
		defer signal.Stop(ch)

		var sig os.Signal
		select {
		case sig = <-ch:
		case sig = <-injectedSignals(ctx):
		case <-ctx.Done():
			return ctx.Err()
		}
		g.logger.Info(ctx, "received signal", slog.String("signal", sig.String()))
		g.Cancel(&SignalError{Signal: sig})
		return nil
	}
}

// 测试通过 context 注入信号，避免向进程发送真实信号。
type injectedSignalsKey struct{}

func injectedSignals(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(injectedSignalsKey{}).(<-chan os.Signal)
	return c
}

func withInjectedSignals(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, injectedSignalsKey{}, c)
}

package xlog

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// Logger 是各组件使用的日志接口。
//
// 每个方法都接收 ctx，EnrichHandler 从中取出追踪和提交周期字段；
// 属性只接受 slog.Attr，不做 key-value 推断。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回附带 attrs 的派生 Logger，与父级共享级别。
	With(attrs ...slog.Attr) Logger
}

// LoggerWithLevel 是 Build 的返回类型，在 Logger 之上允许运行时调整级别。
// 组件只依赖 Logger，级别由创建者（如 xcommitctl 按 log.level 配置）掌握。
type LoggerWithLevel interface {
	Logger

	SetLevel(level Level)
	GetLevel() Level
	// Enabled 报告 level 的日志是否会输出。
	Enabled(ctx context.Context, level Level) bool
}

var _ LoggerWithLevel = (*xlogger)(nil)

// xlogger 的派生实例（With）只替换 handler，其余状态通过 shared 共用。
type xlogger struct {
	handler   slog.Handler
	addSource bool
	*shared
}

type shared struct {
	level   *slog.LevelVar
	onError func(error)
	errors  atomic.Uint64

	// reporting 防止 onError 里再写日志时递归
	reporting atomic.Bool
}

// Nop 返回丢弃一切输出的 Logger，各组件以它为默认值。
func Nop() LoggerWithLevel {
	level := new(slog.LevelVar)
	level.Set(slog.LevelError + 1)
	return &xlogger{
		handler: slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}),
		shared:  &shared{level: level},
	}
}

//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// runtime.Callers、log、Debug/Info/Warn/Error 三层之上才是调用方
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}
	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.report(err)
	}
}

// report 计数并尽力通知 onError。并发失败时只有一个 goroutine 进入回调，
// 其余只计数；回调 panic 也计为一次错误。
func (l *xlogger) report(err error) {
	l.errors.Add(1)
	if l.onError == nil || !l.reporting.CompareAndSwap(false, true) {
		return
	}
	defer l.reporting.Store(false)
	defer func() {
		if recover() != nil {
			l.errors.Add(1)
		}
	}()
	l.onError(err)
}

func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{handler: l.handler.WithAttrs(attrs), addSource: l.addSource, shared: l.shared}
}

func (l *xlogger) SetLevel(level Level) { l.level.Set(slog.Level(level)) }

func (l *xlogger) GetLevel() Level { return Level(l.level.Level()) }

func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

// ErrorCount 返回写日志失败的次数，派生 logger 共用同一计数。
func (l *xlogger) ErrorCount() uint64 {
	return l.errors.Load()
}

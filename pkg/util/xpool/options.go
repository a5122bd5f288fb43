package xpool

import "github.com/omeyang/xcommit/pkg/observability/xlog"

// Option 配置 Pool。
type Option func(*options)

type options struct {
	logger  xlog.Logger
	name    string
	maxIdle int
}

// WithLogger 设置记录 destroy panic 的 logger，默认 xlog.Nop()，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 给池命名，日志中以 pool 字段出现。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMaxIdle 设置最多保留的空闲对象数，默认 8，0 表示归还即销毁，负数使 New 返回 ErrInvalidMaxIdle。
func WithMaxIdle(n int) Option {
	return func(o *options) {
		o.maxIdle = n
	}
}

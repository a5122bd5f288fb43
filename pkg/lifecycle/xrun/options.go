package xrun

import (
	"os"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
)

// Option 配置 Group 和 RunServices。
type Option func(*groupOptions)

// groupOptions.signals 为 nil 时使用 DefaultSignals，非 nil 的空切片表示不监听信号。
type groupOptions struct {
	logger  xlog.Logger
	name    string
	signals []os.Signal
}

// WithLogger 设置记录服务启停和信号的 logger，默认不输出。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置出现在日志 group 字段中的名称，默认 "xrun"。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 替换 RunServices 监听的信号，传入空列表等同于 WithoutSignalHandler。
func WithSignals(signals []os.Signal) Option {
	copied := append([]os.Signal{}, signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 让 RunServices 只在 ctx 结束或服务出错时返回。
func WithoutSignalHandler() Option {
	return WithSignals(nil)
}

package xcommitstore

import (
	"fmt"
	"os"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

// Option 定义 Store 的配置选项函数类型。
type Option func(*options)

type options struct {
	keyPrefix     string
	lockKeyPrefix string
	identity      string
	logger        xlog.Logger
	observer      xmetrics.Observer
}

func defaultOptions() *options {
	return &options{
		keyPrefix:     "xcommit:pending:",
		lockKeyPrefix: "xcommit:lock:",
		identity:      defaultIdentity(),
		logger:        xlog.Nop(),
		observer:      xmetrics.NoopObserver{},
	}
}

// WithKeyPrefix 设置待提交 hash 的 key 前缀，默认 "xcommit:pending:"。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithLockKeyPrefix 设置周期锁的 key 前缀，默认 "xcommit:lock:"。
func WithLockKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.lockKeyPrefix = prefix
	}
}

// WithIdentity 设置实例标识，写入锁值便于排查。默认 hostname:pid。
func WithIdentity(identity string) Option {
	return func(o *options) {
		if identity != "" {
			o.identity = identity
		}
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置统一观测接口。nil 被忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// defaultIdentity 生成默认实例标识（hostname:pid）
func defaultIdentity() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s:%d", hostname, os.Getpid())
}

package xkafkasink

import (
	"github.com/omeyang/xcommit/internal/mqcore"
	"github.com/omeyang/xcommit/pkg/mq/xkafka"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

// TxnErrorKind 是提交失败的分类，见 mqcore.TxnErrorKind。
type TxnErrorKind = mqcore.TxnErrorKind

// 分类常量
const (
	KindNone            = mqcore.KindNone
	KindInvalidTxnState = mqcore.KindInvalidTxnState
	KindFenced          = mqcore.KindFenced
	KindRetriable       = mqcore.KindRetriable
	KindFatal           = mqcore.KindFatal
)

// Classifier 把提交错误映射为分类，默认 xkafka.ClassifyError。
type Classifier func(err error) TxnErrorKind

// RecoveryFactory 创建绑定到 transactionalID 的恢复 producer。
// cfg 是 Committer 持有配置的副本。
type RecoveryFactory func(cfg ProducerConfig, transactionalID string) (xkafka.RecoveryProducer, error)

// Option 定义 Committer 的配置选项函数类型。
type Option func(*options)

type options struct {
	logger     xlog.Logger
	observer   xmetrics.Observer
	factory    RecoveryFactory
	classifier Classifier
}

func defaultOptions() *options {
	return &options{
		logger:     xlog.Nop(),
		observer:   xmetrics.NoopObserver{},
		classifier: xkafka.ClassifyError,
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

// WithRecoveryFactory 设置恢复 producer 的构造函数。
// 默认使用 xkafka.NewResumableProducer，并共享 Committer 的日志和观测配置。
func WithRecoveryFactory(factory RecoveryFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.factory = factory
		}
	}
}

// WithClassifier 设置错误分类函数。nil 被忽略。
func WithClassifier(classifier Classifier) Option {
	return func(o *options) {
		if classifier != nil {
			o.classifier = classifier
		}
	}
}

func defaultRecoveryFactory(logger xlog.Logger, observer xmetrics.Observer) RecoveryFactory {
	return func(cfg ProducerConfig, transactionalID string) (xkafka.RecoveryProducer, error) {
		return xkafka.NewResumableProducer(cfg, transactionalID,
			xkafka.WithResumableLogger(logger),
			xkafka.WithResumableObserver(observer),
		)
	}
}

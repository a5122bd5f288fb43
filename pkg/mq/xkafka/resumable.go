package xkafka

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

// RecoveryProducer 定义恢复提交所需的最小能力：
// 换绑 transactional.id、恢复 (producerId, epoch)、提交、关闭。
type RecoveryProducer interface {
	// TransactionalID 返回当前绑定的 transactional.id。
	TransactionalID() string

	// SetTransactionalID 原地换绑 transactional.id，之前恢复的身份失效。
	SetTransactionalID(transactionalID string) error

	// ResumeTransaction 恢复指定 producerId/epoch 的事务，不与 broker 交互。
	ResumeTransaction(producerID int64, epoch int16) error

	// CommitTransaction 提交已恢复的事务。
	// 返回的错误已包装对应的 mqcore 哨兵错误（可用 errors.Is 判断）。
	CommitTransaction(ctx context.Context) error

	// Close 关闭底层客户端。重复调用安全。
	Close() error
}

// ResumableProducer 是基于 franz-go 的恢复 producer。
//
// 客户端不设置 kgo.TransactionalID，只用来向事务协调者发送 EndTxn；
// 身份 (transactional.id, producerId, epoch) 全部由调用方提供。
type ResumableProducer struct {
	client  kmsg.Requestor
	closeFn func()
	options *resumableOptions

	mu              sync.Mutex
	transactionalID string
	producerID      int64
	epoch           int16
	resumed         bool

	closed atomic.Bool
}

// 确保实现接口
var _ RecoveryProducer = (*ResumableProducer)(nil)

// NewResumableProducer 创建绑定到 transactionalID 的恢复 producer。
// props 与 [ConfigMap] 使用同一份属性，只识别连接相关的键。
// 创建时不连接 broker，首次提交时才建立连接。
func NewResumableProducer(props map[string]string, transactionalID string, opts ...ResumableOption) (*ResumableProducer, error) {
	if transactionalID == "" {
		return nil, ErrEmptyTransactionalID
	}
	kopts, err := ClientOptions(props)
	if err != nil {
		return nil, err
	}

	options := defaultResumableOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	kopts = append(kopts, kgo.WithLogger(newKgoLogger(options.Logger, options.LogLevel)))

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("xkafka: create recovery client: %w", err)
	}
	return newResumableProducer(client, client.Close, transactionalID, options), nil
}

func newResumableProducer(client kmsg.Requestor, closeFn func(), transactionalID string, options *resumableOptions) *ResumableProducer {
	return &ResumableProducer{
		client:          client,
		closeFn:         closeFn,
		options:         options,
		transactionalID: transactionalID,
	}
}

// TransactionalID 返回当前绑定的 transactional.id。
func (p *ResumableProducer) TransactionalID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transactionalID
}

// SetTransactionalID 原地换绑 transactional.id。
// 换绑后必须重新 ResumeTransaction 才能提交。
func (p *ResumableProducer) SetTransactionalID(transactionalID string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if transactionalID == "" {
		return ErrEmptyTransactionalID
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transactionalID = transactionalID
	p.resumed = false
	return nil
}

// ResumeTransaction 记录待提交事务的 producerId 和 epoch。
func (p *ResumableProducer) ResumeTransaction(producerID int64, epoch int16) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if producerID < 0 || epoch < 0 {
		return fmt.Errorf("%w: producerId=%d epoch=%d", ErrInvalidProducerID, producerID, epoch)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producerID = producerID
	p.epoch = epoch
	p.resumed = true
	return nil
}

// CommitTransaction 向事务协调者发送 EndTxn(commit=true)。
// 未 ResumeTransaction 时返回 ErrNotResumed。成功后需要重新恢复才能再次提交。
func (p *ResumableProducer) CommitTransaction(ctx context.Context) (err error) {
	if p.closed.Load() {
		return ErrClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resumed {
		return fmt.Errorf("%w: %q", ErrNotResumed, p.transactionalID)
	}

	ctx, span := xmetrics.Start(ctx, p.options.Observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "end_txn",
		Kind:      xmetrics.KindClient,
		Attrs: append(kafkaAttrs(p.transactionalID),
			xmetrics.Int64("messaging.kafka.producer_id", p.producerID),
			xmetrics.Int("messaging.kafka.producer_epoch", int(p.epoch)),
		),
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	req := kmsg.NewPtrEndTxnRequest()
	req.TransactionalID = p.transactionalID
	req.ProducerID = p.producerID
	req.ProducerEpoch = p.epoch
	req.Commit = true

	resp, err := req.RequestWith(ctx, p.client)
	if err != nil {
		return fmt.Errorf("xkafka: end txn %q: %w", p.transactionalID, classified(err))
	}
	if err = kerr.ErrorForCode(resp.ErrorCode); err != nil {
		return fmt.Errorf("xkafka: end txn %q: %w", p.transactionalID, classified(err))
	}

	p.options.Logger.Debug(ctx, "recovered transaction committed",
		xlog.TransactionalID(p.transactionalID),
		xlog.ProducerID(p.producerID),
		xlog.Epoch(p.epoch),
	)
	p.resumed = false
	return nil
}

// Close 关闭底层客户端。重复调用返回 nil。
func (p *ResumableProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// =============================================================================
// 选项
// =============================================================================

type resumableOptions struct {
	Observer xmetrics.Observer
	Logger   xlog.Logger
	LogLevel kgo.LogLevel
}

func defaultResumableOptions() *resumableOptions {
	return &resumableOptions{
		Observer: xmetrics.NoopObserver{},
		Logger:   xlog.Nop(),
		LogLevel: kgo.LogLevelWarn,
	}
}

// ResumableOption 定义恢复 producer 的配置选项函数类型。
type ResumableOption func(*resumableOptions)

// WithResumableObserver 设置统一观测接口。
func WithResumableObserver(observer xmetrics.Observer) ResumableOption {
	return func(o *resumableOptions) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// WithResumableLogger 设置日志记录器，franz-go 客户端日志也会转发到该记录器。
func WithResumableLogger(logger xlog.Logger) ResumableOption {
	return func(o *resumableOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithResumableLogLevel 设置转发的 franz-go 日志级别，默认 kgo.LogLevelWarn。
func WithResumableLogLevel(level kgo.LogLevel) ResumableOption {
	return func(o *resumableOptions) {
		o.LogLevel = level
	}
}

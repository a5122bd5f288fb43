package xkafkasink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/xcommit/pkg/mq/xkafka"
	"github.com/omeyang/xcommit/pkg/observability/xlog"
	"github.com/omeyang/xcommit/pkg/observability/xmetrics"
)

const componentName = "xkafkasink"

// ProducerConfig 是 broker 连接属性（librdkafka 命名），原样传给 producer 构造函数。
// 必须包含 bootstrap.servers；transaction.timeout.ms 只用于诊断日志。
type ProducerConfig map[string]string

// Clone 返回配置的副本。
func (c ProducerConfig) Clone() ProducerConfig {
	return maps.Clone(c)
}

// Outcome 是单个 committable 的提交结果。
type Outcome int

const (
	// OutcomeCommitted 事务已提交。
	OutcomeCommitted Outcome = iota
	// OutcomeAbandoned 事务已无法提交（状态无效或 producer 被隔离），不再重试。
	OutcomeAbandoned
	// OutcomeRetry 暂时性失败，留待下一周期重试。
	OutcomeRetry
	// OutcomeFatal 周期级失败，中止本周期。
	OutcomeFatal
)

// String 返回可读名称，用于日志和指标标签。
func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeAbandoned:
		return "abandoned"
	case OutcomeRetry:
		return "retry"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result 是一次提交周期的逐项结果。
type Result struct {
	// Committed 提交成功的 committable。
	Committed []*Committable
	// Abandoned 被放弃的 committable。
	Abandoned []*Committable
	// Retry 需要调用方在下一周期重新提交的 committable，保持原样。
	Retry []*Committable
}

// Committer 是 Kafka 事务的提交协调者。
//
// 每个提交周期对一批 committable 逐个提交并分类结果，返回需要重试的子集。
// 重试集合由调用方跨周期持有，Committer 除缓存的恢复 producer 外不保存周期间状态。
// 同一 Committer 的周期内部串行执行，并发调用会排队。
type Committer struct {
	cfg        ProducerConfig
	opts       *options
	txnTimeout time.Duration

	mu       sync.Mutex
	recovery *recoveryManager
	closed   bool
}

// NewCommitter 创建 Committer。cfg 会被复制，之后修改 cfg 不影响 Committer。
func NewCommitter(cfg ProducerConfig, opts ...Option) (*Committer, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if strings.TrimSpace(cfg[xkafka.KeyBootstrapServers]) == "" {
		return nil, ErrMissingBootstrap
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.factory == nil {
		o.factory = defaultRecoveryFactory(o.logger, o.observer)
	}
	o.logger = o.logger.With(xlog.Component(componentName))

	cloned := cfg.Clone()
	return &Committer{
		cfg:        cloned,
		opts:       o,
		txnTimeout: xkafka.TransactionTimeout(cloned),
		recovery:   newRecoveryManager(cloned, o.factory),
	}, nil
}

// Commit 提交一批 committable，返回需要重试的子集。
//
// 单个事务的失败不会返回错误：状态无效和被隔离的事务被放弃，其余失败进入重试集合。
// 只有周期级故障（恢复 producer 无法创建、分类为 KindFatal 的错误、ctx 在两个
// committable 之间被取消）返回错误，此时重试集合包含当前和所有未处理的 committable。
// 批次中的 nil 元素被忽略。
func (c *Committer) Commit(ctx context.Context, batch []*Committable) ([]*Committable, error) {
	res, err := c.CommitResult(ctx, batch)
	return res.Retry, err
}

// CommitResult 与 Commit 相同，但返回逐项结果。
func (c *Committer) CommitResult(ctx context.Context, batch []*Committable) (res Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		res.Retry = compact(batch)
		return res, ErrClosed
	}
	if len(batch) == 0 {
		return res, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "commit",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.Int("batch.size", len(batch))},
	})
	defer func() {
		c.recordOutcomes(ctx, res)
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{
			xmetrics.Int("committed", len(res.Committed)),
			xmetrics.Int("abandoned", len(res.Abandoned)),
			xmetrics.Int("retry", len(res.Retry)),
		}})
	}()

	for i, cm := range batch {
		if cm == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Retry = append(res.Retry, compact(batch[i:])...)
			return res, fmt.Errorf("%w: %w", ErrCycleInterrupted, ctxErr)
		}

		outcome, commitErr := c.commitOne(ctx, cm)
		switch outcome {
		case OutcomeCommitted:
			res.Committed = append(res.Committed, cm)
		case OutcomeAbandoned:
			res.Abandoned = append(res.Abandoned, cm)
		case OutcomeRetry:
			res.Retry = append(res.Retry, cm)
		case OutcomeFatal:
			res.Retry = append(res.Retry, compact(batch[i:])...)
			return res, commitErr
		}
	}
	return res, nil
}

// commitOne 解析句柄、提交并分类。只在 OutcomeFatal 时返回错误。
func (c *Committer) commitOne(ctx context.Context, cm *Committable) (Outcome, error) {
	logger := c.opts.logger
	kind := cm.handle()
	logger.Debug(ctx, "committing kafka transaction",
		xlog.TransactionalID(cm.transactionalID),
		slog.String("handle", kind.String()),
	)

	var err error
	switch kind {
	case liveHandle:
		err = cm.producer.Object().CommitTransaction(ctx)
	case needsRecovery:
		var producer xkafka.RecoveryProducer
		if producer, err = c.recovery.resume(cm); err == nil {
			err = producer.CommitTransaction(ctx)
		}
	}

	if errors.Is(err, ErrRecoveryProducer) {
		logger.Error(ctx, "cannot create recovery producer, aborting commit cycle",
			identityAttrs(cm, xlog.Err(err))...)
		return OutcomeFatal, err
	}

	switch c.opts.classifier(err) {
	case KindNone:
		cm.release()
		return OutcomeCommitted, nil

	case KindInvalidTxnState:
		logger.Warn(ctx, "unable to commit transaction because it is in an invalid state; "+
			"most likely it has been aborted, check the kafka broker logs for details",
			identityAttrs(cm, xlog.Err(err))...)
		cm.release()
		return OutcomeAbandoned, nil

	case KindFenced:
		logger.Warn(ctx, "unable to commit transaction because its producer is fenced; "+
			"either another producer uses the same "+xkafka.KeyTransactionalID+
			" or recovery took longer than "+xkafka.KeyTransactionTimeoutMs+
			", this most likely signals data loss",
			identityAttrs(cm,
				slog.String("transactional_id_config", xkafka.KeyTransactionalID),
				slog.String("transaction_timeout_config", xkafka.KeyTransactionTimeoutMs),
				slog.Int64("transaction_timeout_ms", c.txnTimeout.Milliseconds()),
				xlog.Err(err),
			)...)
		cm.release()
		return OutcomeAbandoned, nil

	case KindFatal:
		logger.Error(ctx, "fatal commit error, aborting commit cycle",
			identityAttrs(cm, xlog.Err(err))...)
		return OutcomeFatal, fmt.Errorf("xkafkasink: commit %s: %w", cm, err)

	default:
		logger.Warn(ctx, "cannot commit kafka transaction, retrying",
			identityAttrs(cm, xlog.Err(err))...)
		return OutcomeRetry, nil
	}
}

func (c *Committer) recordOutcomes(ctx context.Context, res Result) {
	observer := c.opts.observer
	xmetrics.RecordOutcome(ctx, observer, componentName, OutcomeCommitted.String(), int64(len(res.Committed)))
	xmetrics.RecordOutcome(ctx, observer, componentName, OutcomeAbandoned.String(), int64(len(res.Abandoned)))
	xmetrics.RecordOutcome(ctx, observer, componentName, OutcomeRetry.String(), int64(len(res.Retry)))
}

// Close 关闭恢复 producer（如果创建过）。重复调用返回 nil。
// Close 会等待进行中的提交周期结束。
func (c *Committer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.recovery.created() {
		return nil
	}
	c.opts.logger.Debug(context.Background(), "closing recovery producer")
	if err := c.recovery.close(); err != nil {
		return fmt.Errorf("xkafkasink: close recovery producer: %w", err)
	}
	return nil
}

func identityAttrs(cm *Committable, extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3+len(extra))
	attrs = append(attrs,
		xlog.TransactionalID(cm.transactionalID),
		xlog.ProducerID(cm.producerID),
		xlog.Epoch(cm.epoch),
	)
	return append(attrs, extra...)
}

// compact 返回去掉 nil 元素的新切片。
func compact(batch []*Committable) []*Committable {
	out := make([]*Committable, 0, len(batch))
	for _, cm := range batch {
		if cm != nil {
			out = append(out, cm)
		}
	}
	return out
}
